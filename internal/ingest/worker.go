package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// ExtractionWorker 消费上传任务，下载原始文件并完成结构化提取
type ExtractionWorker struct {
	objects   storage.ObjectStorage
	store     ResumeStore
	extractor Extractor
	dedup     Deduper
	logger    *zerolog.Logger
}

// WorkerOption 提取worker选项
type WorkerOption func(*ExtractionWorker)

// WithWorkerDeduper 提取失败时回滚MD5去重记录
func WithWorkerDeduper(d Deduper) WorkerOption {
	return func(w *ExtractionWorker) {
		w.dedup = d
	}
}

// WithWorkerLogger 设置日志记录器
func WithWorkerLogger(l *zerolog.Logger) WorkerOption {
	return func(w *ExtractionWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewExtractionWorker 创建提取worker
func NewExtractionWorker(objects storage.ObjectStorage, store ResumeStore, extractor Extractor, opts ...WorkerOption) *ExtractionWorker {
	w := &ExtractionWorker{
		objects:   objects,
		store:     store,
		extractor: extractor,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle 实现 storage.DeliveryHandler
// 文档本身无法提取时标记失败并确认消息；基础设施错误返回false让消息重新入队
func (w *ExtractionWorker) Handle(ctx context.Context, body []byte) bool {
	var msg storage.ResumeUploadMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error().Err(err).Msg("无法解析提取任务消息，丢弃")
		return true
	}
	err := w.Process(ctx, msg)
	if err == nil {
		return true
	}
	return errors.Is(err, errPermanent)
}

var errPermanent = errors.New("不可重试的提取失败")

// Process 处理一条提取任务
func (w *ExtractionWorker) Process(ctx context.Context, msg storage.ResumeUploadMessage) error {
	ctx, span := tracer.Start(ctx, "ingest.ProcessUpload", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("resume.id", msg.ResumeID), attribute.String("file.type", msg.FileType))

	log := w.logger.With().Str("resume_id", msg.ResumeID).Logger()
	log.Debug().Msg("开始处理提取任务")

	data, err := w.objects.GetOriginal(ctx, msg.OriginalPathOSS)
	if errors.Is(err, storage.ErrNotFound) {
		w.fail(ctx, msg, &log)
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("%w: 原始文件不存在: %v", errPermanent, err)
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("下载原始文件失败: %w", err)
	}

	kind, err := parser.ParseKind(msg.FileType)
	if err != nil {
		w.fail(ctx, msg, &log)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	record, err := w.extractor.Extract(ctx, types.RawDocument{Data: data, Kind: kind, FileName: msg.OriginalFilename})
	if err != nil {
		log.Warn().Err(err).Msg("简历提取失败")
		w.fail(ctx, msg, &log)
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return fmt.Errorf("%w: %v", errPermanent, err)
	}
	record.ID = msg.ResumeID

	textKey, err := w.objects.UploadText(ctx, msg.ResumeID, record.RawText)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("归档提取文本失败: %w", err)
	}

	archive := storage.ArchiveInfo{
		OriginalPath: msg.OriginalPathOSS,
		TextPath:     textKey,
		RawTextMD5:   md5Hex([]byte(record.RawText)),
	}
	if err := w.store.SaveResumeWithArchive(ctx, &record, archive); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存简历失败: %w", err)
	}

	log.Info().Int("skills", len(record.Skills)).Msg("简历提取完成")
	return nil
}

func (w *ExtractionWorker) fail(ctx context.Context, msg storage.ResumeUploadMessage, log *zerolog.Logger) {
	if err := w.store.UpdateProcessingStatus(ctx, msg.ResumeID, models.StatusExtractionFailed); err != nil {
		log.Warn().Err(err).Msg("更新简历状态为提取失败时出错")
	}
	if w.dedup != nil && msg.RawFileMD5 != "" {
		if err := w.dedup.RemoveFileMD5(ctx, msg.RawFileMD5); err != nil {
			log.Warn().Err(err).Msg("回滚文件MD5失败")
		}
	}
}
