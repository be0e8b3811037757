package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/constants"
	"resume-matcher/internal/storage/models"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const defaultListLimit = 20

// EventRouting 发件箱事件的目标exchange和路由键，Exchange为空时不写发件箱
type EventRouting struct {
	ResumeExchange    string
	ExtractedKey      string
	MatchExchange     string
	MatchCompletedKey string
}

// EventRoutingFromConfig 从RabbitMQ配置构造事件路由
func EventRoutingFromConfig(cfg config.RabbitMQConfig) EventRouting {
	return EventRouting{
		ResumeExchange:    cfg.ResumeEventsExchange,
		ExtractedKey:      cfg.ExtractedRoutingKey,
		MatchExchange:     cfg.MatchEventsExchange,
		MatchCompletedKey: cfg.MatchCompletedRoutingKey,
	}
}

// ArchiveInfo 简历原始文件和提取文本的归档信息
type ArchiveInfo struct {
	OriginalPath string
	TextPath     string
	RawTextMD5   string
}

// MySQL 基于GORM的持久化实现
type MySQL struct {
	db      *gorm.DB
	cfg     *config.MySQLConfig
	routing EventRouting
	logger  *zerolog.Logger
}

// NewMySQL 连接MySQL、注册追踪插件并迁移表结构
func NewMySQL(cfg *config.MySQLConfig, l *zerolog.Logger) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}
	return newMySQLFromDB(db, cfg, l)
}

func newMySQLFromDB(db *gorm.DB, cfg *config.MySQLConfig, l *zerolog.Logger) (*MySQL, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg, logger: l}
	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}
	l.Info().Str("database", cfg.Database).Msg("成功连接到MySQL并完成表结构迁移")
	return m, nil
}

func gormLogLevel(level int) gormlogger.LogLevel {
	switch level {
	case 1:
		return gormlogger.Silent
	case 2:
		return gormlogger.Error
	case 3:
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}

func (m *MySQL) autoMigrateSchema() error {
	// 迁移期间静默
	return m.db.Session(&gorm.Session{Logger: gormlogger.Discard}).AutoMigrate(
		&models.Resume{},
		&models.ResumeSkill{},
		&models.ResumeDegree{},
		&models.Tag{},
		&models.JobDescription{},
		&models.MatchResult{},
		&models.OutboxMessage{},
	)
}

// UseEventRouting 设置发件箱事件路由
func (m *MySQL) UseEventRouting(r EventRouting) {
	m.routing = r
}

// DB 返回GORM连接
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

func (m *MySQL) startSpan(ctx context.Context, name, table string) (context.Context, trace.Span) {
	return mysqlTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.name", m.cfg.Database),
			attribute.String("db.sql.table", table),
		))
}

// NewRecordID 生成时间有序的UUIDv7
func NewRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	return id.String(), nil
}

// CreatePendingResume 上传后先落一条待提取记录
func (m *MySQL) CreatePendingResume(ctx context.Context, id string, file types.FileMeta, archive ArchiveInfo) error {
	row := &models.Resume{
		ResumeID:         id,
		OriginalFilename: file.FileName,
		FileType:         string(file.FileType),
		FileSize:         file.FileSize,
		OriginalPathOSS:  archive.OriginalPath,
		ProcessingStatus: models.StatusPendingExtraction,
		ExtractorVersion: constants.DefaultExtractorVersion,
	}
	return m.db.WithContext(ctx).Create(row).Error
}

// UpdateProcessingStatus 更新简历处理状态
func (m *MySQL) UpdateProcessingStatus(ctx context.Context, id, status string) error {
	res := m.db.WithContext(ctx).Model(&models.Resume{}).Where("resume_id = ?", id).Update("processing_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResume 实现 ResumeRepository
func (m *MySQL) SaveResume(ctx context.Context, r *types.ResumeRecord) error {
	return m.SaveResumeWithArchive(ctx, r, ArchiveInfo{})
}

// SaveResumeWithArchive 保存简历及检索表，并在同一事务内写入 resume.extracted 事件
func (m *MySQL) SaveResumeWithArchive(ctx context.Context, r *types.ResumeRecord, archive ArchiveInfo) error {
	ctx, span := m.startSpan(ctx, "MySQL.SaveResume", "resumes")
	defer span.End()

	if r.ID == "" {
		id, err := NewRecordID()
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			return err
		}
		r.ID = id
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	span.SetAttributes(attribute.String("resume.id", r.ID), attribute.Int("resume.skills", len(r.Skills)))

	row, err := models.NewResume(*r)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return fmt.Errorf("序列化简历失败: %w", err)
	}
	row.OriginalPathOSS = archive.OriginalPath
	row.ParsedTextPath = archive.TextPath
	row.RawTextMD5 = archive.RawTextMD5
	row.ExtractorVersion = constants.DefaultExtractorVersion

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skills, degrees := row.Skills, row.Degrees
		row.Skills, row.Degrees = nil, nil

		if err := tx.Where("resume_id = ?", r.ID).Delete(&models.ResumeSkill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resume_id = ?", r.ID).Delete(&models.ResumeDegree{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(row).Error; err != nil {
			return err
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}
		if len(degrees) > 0 {
			if err := tx.Create(&degrees).Error; err != nil {
				return err
			}
		}
		if len(r.Tags) > 0 {
			names := make([]string, 0, len(r.Tags))
			for _, t := range r.Tags {
				names = append(names, t.Name)
			}
			tags, err := findOrCreateTags(tx, names)
			if err != nil {
				return err
			}
			if err := tx.Model(row).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}

		if m.routing.ResumeExchange == "" {
			return nil
		}
		return addOutboxMessage(tx, r.ID, constants.EventResumeExtracted, m.routing.ResumeExchange, m.routing.ExtractedKey, ResumeExtractedEvent{
			ResumeID:      r.ID,
			CandidateName: r.ContactInfo.Name,
			SkillCount:    len(r.Skills),
			ExtractedAt:   now,
		})
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存简历失败: %w", err)
	}
	return nil
}

func addOutboxMessage(tx *gorm.DB, aggregateID, eventType, exchange, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	return tx.Create(&models.OutboxMessage{
		AggregateID:      aggregateID,
		EventType:        eventType,
		Payload:          string(body),
		TargetExchange:   exchange,
		TargetRoutingKey: routingKey,
		Status:           models.OutboxPending,
	}).Error
}

func findOrCreateTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = normalizeTagNames(names)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name}
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("创建标签 %s 失败: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (m *MySQL) loadResume(db *gorm.DB, id string) (*models.Resume, error) {
	var row models.Resume
	err := db.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Where("resume_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetResume 实现 ResumeRepository
func (m *MySQL) GetResume(ctx context.Context, id string) (types.ResumeRecord, error) {
	row, err := m.loadResume(m.db.WithContext(ctx), id)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return row.ToRecord()
}

// ListResumes 实现 ResumeRepository，按创建时间倒序
func (m *MySQL) ListResumes(ctx context.Context, offset, limit int) ([]types.ResumeRecord, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	db := m.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Resume{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Resume
	if err := db.Preload("Tags").Order("created_at desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	records, err := toRecords(rows)
	return records, total, err
}

// DeleteResume 实现 ResumeRepository
func (m *MySQL) DeleteResume(ctx context.Context, id string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := m.loadResume(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(row).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("resume_id = ?", id).Delete(&models.ResumeSkill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resume_id = ?", id).Delete(&models.ResumeDegree{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Resume{}, "resume_id = ?", id).Error
	})
}

// SearchResumes 实现 ResumeRepository
func (m *MySQL) SearchResumes(ctx context.Context, q ResumeQuery) ([]types.ResumeRecord, error) {
	db := m.db.WithContext(ctx)
	query := db.Model(&models.Resume{}).Preload("Tags")
	if q.Skill != "" {
		query = query.Where("resume_id IN (?)",
			db.Model(&models.ResumeSkill{}).Select("resume_id").Where("name_lower LIKE ?", likePattern(q.Skill)))
	}
	if q.Education != "" {
		query = query.Where("resume_id IN (?)",
			db.Model(&models.ResumeDegree{}).Select("resume_id").Where("degree_lower LIKE ?", likePattern(q.Education)))
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []models.Resume
	if err := query.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows)
}

// AddTags 实现 ResumeRepository
func (m *MySQL) AddTags(ctx context.Context, id string, names []string) (types.ResumeRecord, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := m.loadResume(tx, id)
		if err != nil {
			return err
		}
		tags, err := findOrCreateTags(tx, names)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Model(row).Association("Tags").Append(tags)
	})
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return m.GetResume(ctx, id)
}

// RemoveTag 实现 ResumeRepository
func (m *MySQL) RemoveTag(ctx context.Context, id string, name string) (types.ResumeRecord, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := m.loadResume(tx, id)
		if err != nil {
			return err
		}
		var tag models.Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(row).Association("Tags").Delete(&tag)
	})
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return m.GetResume(ctx, id)
}

// ListTags 实现 ResumeRepository
func (m *MySQL) ListTags(ctx context.Context) ([]types.Tag, error) {
	var rows []models.Tag
	if err := m.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	tags := make([]types.Tag, 0, len(rows))
	for _, t := range rows {
		tags = append(tags, types.Tag{ID: t.ID, Name: t.Name})
	}
	return tags, nil
}

// EachResume 实现 ResumeRepository，只遍历已完成提取的简历
func (m *MySQL) EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error {
	var batch []models.Resume
	res := m.db.WithContext(ctx).Preload("Tags").
		Where("processing_status = ?", models.StatusExtracted).
		FindInBatches(&batch, 100, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				record, err := batch[i].ToRecord()
				if err != nil {
					return err
				}
				if err := fn(record); err != nil {
					return err
				}
			}
			return nil
		})
	return res.Error
}

// TextHash 岗位描述文本的SHA-256十六进制摘要
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SaveJobDescription 实现 MatchRepository
func (m *MySQL) SaveJobDescription(ctx context.Context, text string, jd types.JobDescriptionRecord) (string, error) {
	hash := TextHash(text)
	db := m.db.WithContext(ctx)

	var existing models.JobDescription
	err := db.Where("text_sha256 = ?", hash).First(&existing).Error
	if err == nil {
		return existing.JobID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	id, err := NewRecordID()
	if err != nil {
		return "", err
	}
	structured, err := models.ToJSON(jd)
	if err != nil {
		return "", err
	}
	row := &models.JobDescription{
		JobID:           id,
		JobTitle:        jd.Title,
		DescriptionText: text,
		TextSHA256:      hash,
		StructuredJSON:  structured,
	}
	if err := db.Create(row).Error; err != nil {
		return "", fmt.Errorf("保存岗位描述失败: %w", err)
	}
	return id, nil
}

// SaveMatchReport 实现 MatchRepository，并在同一事务内写入 match.completed 事件
func (m *MySQL) SaveMatchReport(ctx context.Context, jobID string, report types.MatchReport) error {
	ctx, span := m.startSpan(ctx, "MySQL.SaveMatchReport", "match_results")
	defer span.End()

	body, err := models.ToJSON(report)
	if err != nil {
		return err
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.MatchResult{
			ResumeID:        report.ResumeID,
			JobID:           jobID,
			MatchPercentage: report.MatchPercentage,
			Recommendation:  report.Recommendation,
			ReportJSON:      body,
		}).Error; err != nil {
			return err
		}
		if m.routing.MatchExchange == "" {
			return nil
		}
		return addOutboxMessage(tx, report.ResumeID, constants.EventMatchCompleted, m.routing.MatchExchange, m.routing.MatchCompletedKey, MatchCompletedEvent{
			ResumeID:        report.ResumeID,
			JobID:           jobID,
			MatchPercentage: report.MatchPercentage,
			Recommendation:  report.Recommendation,
			CompletedAt:     time.Now(),
		})
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存匹配报告失败: %w", err)
	}
	return nil
}

func toRecords(rows []models.Resume) ([]types.ResumeRecord, error) {
	records := make([]types.ResumeRecord, 0, len(rows))
	for i := range rows {
		r, err := rows[i].ToRecord()
		if err != nil {
			return nil, fmt.Errorf("解析简历 %s 失败: %w", rows[i].ResumeID, err)
		}
		records = append(records, r)
	}
	return records, nil
}
