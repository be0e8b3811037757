// Package ingest 负责简历的异步入库：上传归档、去重、投递提取任务，以及消费任务完成提取
package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("resume-matcher/ingest")

// 上传结果状态
const (
	StatusSubmitted     = "SUBMITTED_FOR_PROCESSING"
	StatusDuplicateFile = "DUPLICATE_FILE_SKIPPED"
)

// Deduper 原始文件MD5去重，storage.Redis 实现
type Deduper interface {
	CheckAndSetFileMD5(ctx context.Context, md5Hex, resumeID string) (exists bool, existingID string, err error)
	RemoveFileMD5(ctx context.Context, md5Hex string) error
}

// ResumeStore 异步入库需要的持久化能力，storage.MySQL 实现
type ResumeStore interface {
	CreatePendingResume(ctx context.Context, id string, file types.FileMeta, archive storage.ArchiveInfo) error
	UpdateProcessingStatus(ctx context.Context, id, status string) error
	SaveResumeWithArchive(ctx context.Context, r *types.ResumeRecord, archive storage.ArchiveInfo) error
}

// JSONPublisher 任务投递，storage.RabbitMQ 实现
type JSONPublisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

// Extractor 把原始文档转成简历记录，processor.Processor 实现
type Extractor interface {
	Extract(ctx context.Context, doc types.RawDocument) (types.ResumeRecord, error)
}

var (
	_ Deduper       = (*storage.Redis)(nil)
	_ ResumeStore   = (*storage.MySQL)(nil)
	_ JSONPublisher = (*storage.RabbitMQ)(nil)
)

// md5Hex 计算文件内容的MD5
func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
