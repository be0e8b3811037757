package matcher

import (
	"context"
	"strings"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

const (
	// TaxonomySimilarity 同分类相关技能的固定相似度
	TaxonomySimilarity = 0.8
	// SubstringSimilarity 子串包含回退的固定相似度
	SubstringSimilarity = 0.7
	// DefaultEmbeddingThreshold 语义回退的最低相似度(不含)
	DefaultEmbeddingThreshold = 0.7
)

// Matcher 在候选技能中为岗位技能寻找直接或相关匹配
// 构建后只读，可被多个goroutine同时使用
type Matcher struct {
	taxonomy  *Taxonomy
	embedder  Embedder
	threshold float64
	logger    *zerolog.Logger
}

// Option Matcher选项
type Option func(*Matcher)

// WithEmbedder 启用语义相似度回退，nil 表示不启用
func WithEmbedder(e Embedder) Option {
	return func(m *Matcher) {
		m.embedder = e
	}
}

// WithTaxonomy 替换相关技能表
func WithTaxonomy(t *Taxonomy) Option {
	return func(m *Matcher) {
		if t != nil {
			m.taxonomy = t
		}
	}
}

// WithSimilarityThreshold 设置语义回退阈值
func WithSimilarityThreshold(v float64) Option {
	return func(m *Matcher) {
		if v > 0 && v < 1 {
			m.threshold = v
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// New 创建Matcher
func New(opts ...Option) *Matcher {
	m := &Matcher{
		taxonomy:  DefaultTaxonomy(),
		threshold: DefaultEmbeddingThreshold,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Taxonomy 返回使用中的相关技能表
func (m *Matcher) Taxonomy() *Taxonomy {
	return m.taxonomy
}

// HasEmbedder 是否启用了语义回退
func (m *Matcher) HasEmbedder() bool {
	return m.embedder != nil
}

// FindMatch 为一项岗位技能在候选技能中寻找匹配，没有匹配返回nil
// 顺序: 归一化相等(direct) > 同分类 > 语义相似度 > 子串包含
func (m *Matcher) FindMatch(ctx context.Context, required string, candidates []string, experience []types.ExperienceEntry) *types.SkillMatch {
	reqNorm := Normalize(required)
	for _, c := range candidates {
		if Normalize(c) == reqNorm {
			return &types.SkillMatch{
				Skill:           c,
				MatchType:       types.MatchDirect,
				Years:           SkillYears(c, experience),
				SimilarityScore: 1.0,
			}
		}
	}

	skill, score, ok := m.findRelated(ctx, required, candidates)
	if !ok {
		return nil
	}
	return &types.SkillMatch{
		Skill:           skill,
		MatchType:       types.MatchRelated,
		Years:           SkillYears(skill, experience),
		SimilarityScore: score,
		RelatedSkill:    required,
	}
}

func (m *Matcher) findRelated(ctx context.Context, required string, candidates []string) (string, float64, bool) {
	if len(candidates) == 0 {
		return "", 0, false
	}

	if skill, ok := m.taxonomy.Related(required, candidates); ok {
		return skill, TaxonomySimilarity, true
	}

	if m.embedder != nil {
		if skill, score, ok := m.semantic(ctx, required, candidates); ok {
			return skill, score, true
		}
	}

	reqNorm := Normalize(required)
	if reqNorm == "" {
		return "", 0, false
	}
	for _, c := range candidates {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if strings.Contains(reqNorm, n) || strings.Contains(n, reqNorm) {
			return c, SubstringSimilarity, true
		}
	}
	return "", 0, false
}

// semantic 向量化失败时记录日志并放弃该步骤
func (m *Matcher) semantic(ctx context.Context, required string, candidates []string) (string, float64, bool) {
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, required)
	texts = append(texts, candidates...)

	vectors, err := m.embedder.Encode(ctx, texts)
	if err != nil {
		m.logger.Warn().Err(err).Str("skill", required).Msg("语义相似度计算失败，回退到子串匹配")
		return "", 0, false
	}
	if len(vectors) != len(texts) {
		m.logger.Warn().Int("expected", len(texts)).Int("actual", len(vectors)).Msg("向量数量不匹配，忽略语义回退")
		return "", 0, false
	}

	best, bestScore := -1, 0.0
	for i := range candidates {
		score := Cosine(vectors[0], vectors[i+1])
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore <= m.threshold {
		return "", 0, false
	}
	if bestScore > 1 {
		bestScore = 1
	}
	m.logger.Debug().Str("skill", required).Str("candidate", candidates[best]).Float64("score", bestScore).Msg("语义匹配成功")
	return candidates[best], bestScore, true
}
