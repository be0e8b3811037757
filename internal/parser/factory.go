package parser

import (
	"context"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// LoggerProvider 按组件名返回logger
type LoggerProvider func(component string) *zerolog.Logger

// BuildAcquirer 根据配置组装文本获取器
// pdf.primary 为 "eino" 时以Eino为主策略、Tika为备用策略；为 "tika" 时顺序相反
// 未配置Tika时DOC格式不可用，PDF只使用Eino
func BuildAcquirer(ctx context.Context, cfg *config.Config, loggerProvider LoggerProvider) (*Acquirer, error) {
	initLogger := loggerProvider("acquirer")

	var tika TextExtractor
	var docTika TextExtractor
	if cfg.Tika.ServerURL != "" {
		opts := []TikaOption{
			WithMetadataMode(cfg.Tika.MetadataMode),
			WithTikaLogger(loggerProvider("tika")),
		}
		if cfg.Tika.Timeout > 0 {
			opts = append(opts, WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		tika = NewTikaExtractor(cfg.Tika.ServerURL, opts...)
		docTika = NewTikaExtractor(cfg.Tika.ServerURL, append(opts, WithDefaultKind(types.KindDOC))...)
	}

	var eino TextExtractor
	einoExtractor, err := NewEinoPDFExtractor(ctx, WithEinoLogger(loggerProvider("eino-pdf")))
	if err != nil {
		initLogger.Warn().Err(err).Msg("Eino PDF解析器初始化失败")
		if tika == nil {
			return nil, err
		}
	} else {
		eino = einoExtractor
	}

	primary, fallback := eino, tika
	if cfg.PDF.Primary == "tika" && tika != nil {
		primary, fallback = tika, eino
	}
	if primary == nil {
		primary, fallback = fallback, nil
	}

	initLogger.Info().
		Str("pdf_primary", primary.Name()).
		Bool("pdf_fallback", fallback != nil).
		Bool("doc_enabled", docTika != nil).
		Msg("文本获取器初始化完成")

	return NewAcquirer(
		WithPDFExtractors(primary, fallback),
		WithDOCExtractor(docTika),
		WithDOCXExtractor(NewDocxExtractor(WithDocxLogger(loggerProvider("docx")))),
		WithMinTextLength(cfg.PDF.MinTextLength),
		WithAcquirerLogger(initLogger),
	), nil
}
