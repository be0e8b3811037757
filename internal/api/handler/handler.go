package handler

import (
	"context"
	"errors"

	"resume-matcher/internal/ingest"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
)

const defaultMaxUploadBytes = 10 << 20

// JDCache 岗位解析缓存，storage.Redis 实现
type JDCache interface {
	GetCachedJobDescription(ctx context.Context, text string) (types.JobDescriptionRecord, bool, error)
	CacheJobDescription(ctx context.Context, text string, jd types.JobDescriptionRecord) error
}

// Uploader 异步上传入口，ingest.UploadService 实现
type Uploader interface {
	Upload(ctx context.Context, fileName string, data []byte) (ingest.UploadResult, error)
}

var (
	_ JDCache  = (*storage.Redis)(nil)
	_ Uploader = (*ingest.UploadService)(nil)
)

// Handler 聚合所有HTTP处理函数
type Handler struct {
	proc           *processor.Processor
	repo           storage.Repository
	jdCache        JDCache
	uploader       Uploader
	maxUploadBytes int64
	logger         *zerolog.Logger
}

// Option 处理器选项
type Option func(*Handler)

// WithRepository 设置持久化实现，未设置时简历相关接口返回503
func WithRepository(repo storage.Repository) Option {
	return func(h *Handler) {
		h.repo = repo
	}
}

// WithJDCache 设置岗位解析缓存
func WithJDCache(c JDCache) Option {
	return func(h *Handler) {
		h.jdCache = c
	}
}

// WithUploader 设置异步上传服务
func WithUploader(u Uploader) Option {
	return func(h *Handler) {
		h.uploader = u
	}
}

// WithMaxUploadMB 上传文件大小上限
func WithMaxUploadMB(mb int) Option {
	return func(h *Handler) {
		if mb > 0 {
			h.maxUploadBytes = int64(mb) << 20
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New 创建Handler
func New(proc *processor.Processor, opts ...Option) *Handler {
	h := &Handler{
		proc:           proc,
		maxUploadBytes: defaultMaxUploadBytes,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health 健康检查
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":     "ok",
		"repository": h.repo != nil,
		"upload":     h.uploader != nil,
	})
}

func writeError(c *app.RequestContext, status int, msg string) {
	c.JSON(status, utils.H{"error": msg})
}

// writeStorageError 把存储错误映射为HTTP状态码
func (h *Handler) writeStorageError(c *app.RequestContext, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, consts.StatusNotFound, "记录不存在")
		return
	}
	h.logger.Error().Err(err).Msg(msg)
	writeError(c, consts.StatusInternalServerError, msg)
}

// requireRepo 未配置持久化时返回503
func (h *Handler) requireRepo(c *app.RequestContext) bool {
	if h.repo == nil {
		writeError(c, consts.StatusServiceUnavailable, "未配置简历存储")
		return false
	}
	return true
}

// parseJob 解析岗位描述，命中缓存时直接返回
func (h *Handler) parseJob(ctx context.Context, text string) types.JobDescriptionRecord {
	if h.jdCache != nil {
		jd, ok, err := h.jdCache.GetCachedJobDescription(ctx, text)
		if err != nil {
			h.logger.Warn().Err(err).Msg("读取岗位解析缓存失败")
		} else if ok {
			return jd
		}
	}
	jd := h.proc.ParseJobDescription(text)
	if h.jdCache != nil {
		if err := h.jdCache.CacheJobDescription(ctx, text, jd); err != nil {
			h.logger.Warn().Err(err).Msg("写入岗位解析缓存失败")
		}
	}
	return jd
}
