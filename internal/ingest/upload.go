package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/storage/models"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UploadResult 上传结果
type UploadResult struct {
	ResumeID string `json:"resume_id"`
	Status   string `json:"status"`
}

// UploadService 接收上传的简历文件并投递异步提取任务
type UploadService struct {
	objects    storage.ObjectStorage
	store      ResumeStore
	publisher  JSONPublisher
	dedup      Deduper
	exchange   string
	routingKey string
	logger     *zerolog.Logger
	now        func() time.Time
}

// UploadOption 上传服务选项
type UploadOption func(*UploadService)

// WithDeduper 启用MD5去重，未设置时不去重
func WithDeduper(d Deduper) UploadOption {
	return func(s *UploadService) {
		s.dedup = d
	}
}

// WithUploadLogger 设置日志记录器
func WithUploadLogger(l *zerolog.Logger) UploadOption {
	return func(s *UploadService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewUploadService 创建上传服务，exchange和routingKey为提取任务的投递目标
func NewUploadService(objects storage.ObjectStorage, store ResumeStore, publisher JSONPublisher, exchange, routingKey string, opts ...UploadOption) *UploadService {
	s := &UploadService{
		objects:    objects,
		store:      store,
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload 归档原始文件并投递提取任务
// 相同内容的文件只处理一次，重复上传返回已有的简历ID
func (s *UploadService) Upload(ctx context.Context, fileName string, data []byte) (UploadResult, error) {
	ctx, span := tracer.Start(ctx, "ingest.Upload", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(attribute.String("file.name", fileName), attribute.Int("file.size", len(data)))

	kind, err := parser.KindFromFileName(fileName)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return UploadResult{}, err
	}

	resumeID, err := storage.NewRecordID()
	if err != nil {
		return UploadResult{}, err
	}
	fileMD5 := md5Hex(data)
	log := s.logger.With().Str("resume_id", resumeID).Str("md5", fileMD5).Logger()

	if s.dedup != nil {
		exists, existingID, err := s.dedup.CheckAndSetFileMD5(ctx, fileMD5, resumeID)
		if err != nil {
			// 去重不可用时继续处理
			log.Warn().Err(err).Msg("检查文件MD5失败，跳过去重")
		} else if exists {
			log.Info().Str("existing_id", existingID).Str("filename", fileName).Msg("检测到重复文件，跳过处理")
			span.SetAttributes(attribute.Bool("duplicate", true))
			return UploadResult{ResumeID: existingID, Status: StatusDuplicateFile}, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	originalKey, err := s.objects.UploadOriginal(ctx, resumeID, ext, data)
	if err != nil {
		s.rollbackDedup(ctx, fileMD5, &log)
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return UploadResult{}, fmt.Errorf("归档原始文件失败: %w", err)
	}

	meta := types.FileMeta{FileName: fileName, FileType: kind, FileSize: int64(len(data))}
	if err := s.store.CreatePendingResume(ctx, resumeID, meta, storage.ArchiveInfo{OriginalPath: originalKey}); err != nil {
		s.rollbackDedup(ctx, fileMD5, &log)
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return UploadResult{}, fmt.Errorf("创建简历记录失败: %w", err)
	}

	msg := storage.ResumeUploadMessage{
		ResumeID:         resumeID,
		OriginalFilename: fileName,
		FileType:         string(kind),
		OriginalPathOSS:  originalKey,
		RawFileMD5:       fileMD5,
		SubmittedAt:      s.now(),
	}
	if err := s.publisher.PublishJSON(ctx, s.exchange, s.routingKey, msg, true); err != nil {
		s.rollbackDedup(ctx, fileMD5, &log)
		if statusErr := s.store.UpdateProcessingStatus(ctx, resumeID, models.StatusExtractionFailed); statusErr != nil {
			log.Warn().Err(statusErr).Msg("更新简历状态失败")
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return UploadResult{}, fmt.Errorf("投递提取任务失败: %w", err)
	}

	log.Info().Str("object_key", originalKey).Msg("简历已提交异步提取")
	return UploadResult{ResumeID: resumeID, Status: StatusSubmitted}, nil
}

func (s *UploadService) rollbackDedup(ctx context.Context, fileMD5 string, log *zerolog.Logger) {
	if s.dedup == nil {
		return
	}
	if err := s.dedup.RemoveFileMD5(ctx, fileMD5); err != nil {
		log.Warn().Err(err).Msg("回滚文件MD5失败")
	}
}
