package processor

import (
	"context"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/embedding"
	"resume-matcher/internal/extractor"
	"resume-matcher/internal/jdparser"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/parser"

	"github.com/rs/zerolog"
)

// Option Processor选项
type Option func(*Processor)

// WithAcquirer 设置文本获取器
func WithAcquirer(a *parser.Acquirer) Option {
	return func(p *Processor) {
		p.acquirer = a
	}
}

// WithExtractor 设置字段提取器
func WithExtractor(e *extractor.Extractor) Option {
	return func(p *Processor) {
		p.extractor = e
	}
}

// WithJDParser 设置岗位描述解析器
func WithJDParser(j *jdparser.Parser) Option {
	return func(p *Processor) {
		p.jdParser = j
	}
}

// WithMatcher 设置技能匹配器
func WithMatcher(m *matcher.Matcher) Option {
	return func(p *Processor) {
		p.matcher = m
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// FromConfigOption NewFromConfig 的可选依赖
type FromConfigOption func(*fromConfigDeps)

type fromConfigDeps struct {
	vectorCache embedding.VectorCache
}

// WithVectorCache 为语义回退的向量结果加一层缓存
func WithVectorCache(c embedding.VectorCache) FromConfigOption {
	return func(d *fromConfigDeps) {
		d.vectorCache = c
	}
}

// NewFromConfig 按配置组装全部核心组件
// 语义回退只有在 embedding.enabled 且配置了API密钥时启用，初始化失败时降级为不启用
func NewFromConfig(ctx context.Context, cfg *config.Config, loggerProvider parser.LoggerProvider, opts ...FromConfigOption) (*Processor, error) {
	deps := &fromConfigDeps{}
	for _, opt := range opts {
		opt(deps)
	}

	acquirer, err := parser.BuildAcquirer(ctx, cfg, loggerProvider)
	if err != nil {
		return nil, err
	}

	log := loggerProvider("processor")
	matcherOpts := []matcher.Option{
		matcher.WithSimilarityThreshold(cfg.Matcher.SimilarityThreshold),
		matcher.WithLogger(loggerProvider("matcher")),
	}
	if cfg.Embedding.Enabled && cfg.Embedding.APIKey != "" {
		aliyun, err := embedding.NewAliyunEmbedder(cfg.Embedding, embedding.WithLogger(loggerProvider("embedding")))
		if err != nil {
			log.Warn().Err(err).Msg("向量化服务初始化失败，语义匹配回退不可用")
		} else {
			var inner = matcher.NewEinoEmbedder(aliyun)
			if deps.vectorCache != nil {
				ttl := time.Duration(cfg.Embedding.CacheTTLHours) * time.Hour
				inner = matcher.NewEinoEmbedder(embedding.NewCachedEmbedder(aliyun, deps.vectorCache, aliyun.Model(), ttl, loggerProvider("embedding-cache")))
			}
			matcherOpts = append(matcherOpts, matcher.WithEmbedder(inner))
			log.Info().Str("model", aliyun.Model()).Bool("cached", deps.vectorCache != nil).Msg("已启用语义匹配回退")
		}
	}

	return New(
		WithAcquirer(acquirer),
		WithExtractor(extractor.New(extractor.WithLogger(loggerProvider("extractor")))),
		WithJDParser(jdparser.New(jdparser.WithLogger(loggerProvider("jdparser")))),
		WithMatcher(matcher.New(matcherOpts...)),
		WithLogger(log),
	), nil
}
