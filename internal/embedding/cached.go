package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/constants"
	"resume-matcher/internal/logger"

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
)

// VectorCache 向量缓存，未命中时返回 (nil, false, nil)
type VectorCache interface {
	GetVector(ctx context.Context, key string) ([]float64, bool, error)
	SetVector(ctx context.Context, key string, vector []float64, ttl time.Duration) error
}

// CachedEmbedder 在任意eino Embedder外层加一层按文本缓存的向量结果
// 技能名集合很小且重复率高，缓存命中后不再访问远端接口
type CachedEmbedder struct {
	inner  einoEmbedding.Embedder
	cache  VectorCache
	model  string
	ttl    time.Duration
	logger *zerolog.Logger
}

var _ einoEmbedding.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder 创建带缓存的Embedder，model参与缓存键以区分不同模型的向量
func NewCachedEmbedder(inner einoEmbedding.Embedder, cache VectorCache, model string, ttl time.Duration, l *zerolog.Logger) *CachedEmbedder {
	if l == nil {
		l = logger.Nop()
	}
	return &CachedEmbedder{inner: inner, cache: cache, model: model, ttl: ttl, logger: l}
}

// CacheKey 生成技能向量缓存键
func CacheKey(model, text string) string {
	return fmt.Sprintf(constants.KeySkillVector, model, strings.ToLower(strings.TrimSpace(text)))
}

// EmbedStrings 先查缓存，只对未命中的文本调用底层Embedder
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...einoEmbedding.Option) ([][]float64, error) {
	result := make([][]float64, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)

	for i, text := range texts {
		vec, ok, err := c.cache.GetVector(ctx, CacheKey(c.model, text))
		if err != nil {
			c.logger.Warn().Err(err).Str("text", text).Msg("读取向量缓存失败")
		}
		if ok {
			result[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	vectors, err := c.inner.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("向量数量不匹配: 期望 %d, 实际 %d", len(missTexts), len(vectors))
	}

	for j, vec := range vectors {
		result[missIdx[j]] = vec
		if err := c.cache.SetVector(ctx, CacheKey(c.model, missTexts[j]), vec, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("text", missTexts[j]).Msg("写入向量缓存失败")
		}
	}

	c.logger.Debug().Int("hits", len(texts)-len(missTexts)).Int("misses", len(missTexts)).Msg("向量缓存统计")
	return result, nil
}
