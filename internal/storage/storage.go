package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// ResumeQuery 简历检索条件，字段为空表示不限制，匹配为大小写不敏感的子串
type ResumeQuery struct {
	Skill     string
	Education string
	Limit     int
}

// ResumeRepository 简历持久化契约，MySQL和本地SQLite均实现
type ResumeRepository interface {
	// SaveResume 保存简历，ID为空时生成并回写
	SaveResume(ctx context.Context, r *types.ResumeRecord) error
	GetResume(ctx context.Context, id string) (types.ResumeRecord, error)
	ListResumes(ctx context.Context, offset, limit int) ([]types.ResumeRecord, int64, error)
	DeleteResume(ctx context.Context, id string) error
	SearchResumes(ctx context.Context, q ResumeQuery) ([]types.ResumeRecord, error)

	// AddTags 为简历追加标签，不存在的标签会被创建
	AddTags(ctx context.Context, id string, names []string) (types.ResumeRecord, error)
	// RemoveTag 移除简历上的标签，标签不存在时返回 ErrNotFound
	RemoveTag(ctx context.Context, id string, name string) (types.ResumeRecord, error)
	ListTags(ctx context.Context) ([]types.Tag, error)

	// EachResume 按创建顺序遍历全部简历
	EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error
}

// MatchRepository 岗位描述和匹配报告的持久化
type MatchRepository interface {
	// SaveJobDescription 按文本去重保存岗位描述，返回岗位ID
	SaveJobDescription(ctx context.Context, text string, jd types.JobDescriptionRecord) (string, error)
	SaveMatchReport(ctx context.Context, jobID string, report types.MatchReport) error
}

// Repository 同时提供简历和匹配持久化
type Repository interface {
	ResumeRepository
	MatchRepository
}

var (
	_ Repository = (*MySQL)(nil)
	_ Repository = (*LocalStore)(nil)
)

// Storage 存储管理器，聚合所有存储相关依赖，未配置的组件为nil
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	MySQL    *MySQL
	Redis    *Redis
	Local    *LocalStore

	logger *zerolog.Logger
}

// NewStorage 按配置初始化各存储组件
// 单个组件失败只记录警告，全部失败时返回错误
func NewStorage(ctx context.Context, cfg *config.Config, l *zerolog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if l == nil {
		l = logger.Nop()
	}

	s := &Storage{logger: l}
	var err error
	var initErrors []string

	if cfg.MinIO.Endpoint != "" {
		s.MinIO, err = NewMinIO(ctx, &cfg.MinIO, WithMinIOLogger(l))
		if err != nil {
			l.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	}

	if cfg.RabbitMQ.URL != "" {
		s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ, l)
		if err != nil {
			l.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		}
	}

	if cfg.MySQL.Host != "" {
		s.MySQL, err = NewMySQL(&cfg.MySQL, l)
		if err != nil {
			l.Warn().Err(err).Msg("初始化MySQL失败")
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		}
	}

	if cfg.Redis.Address != "" {
		s.Redis, err = NewRedis(&cfg.Redis, l)
		if err != nil {
			l.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	}

	if s.MySQL == nil && cfg.SQLite.Path != "" {
		s.Local, err = OpenLocalStore(cfg.SQLite.Path)
		if err != nil {
			l.Warn().Err(err).Str("path", cfg.SQLite.Path).Msg("打开本地SQLite失败")
			initErrors = append(initErrors, fmt.Sprintf("SQLite: %v", err))
		}
	}

	if s.MinIO == nil && s.RabbitMQ == nil && s.MySQL == nil && s.Redis == nil && s.Local == nil {
		if len(initErrors) == 0 {
			return nil, fmt.Errorf("没有配置任何存储组件")
		}
		return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
	}
	if len(initErrors) > 0 {
		l.Warn().Str("failed", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}
	return s, nil
}

// Repository 返回可用的持久化实现，优先MySQL
func (s *Storage) Repository() Repository {
	if s.MySQL != nil {
		return s.MySQL
	}
	if s.Local != nil {
		return s.Local
	}
	return nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.Local != nil {
		if err := s.Local.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭本地SQLite失败")
		}
	}
}

// normalizeTagNames 去掉空白和重复的标签名，保持顺序
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
