package matcher

import (
	"context"
	"errors"
	"testing"

	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder 按预设表返回向量，未登记的文本返回零向量
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float64{0, 0}
		}
	}
	return out, nil
}

func TestNormalizeEquivalence(t *testing.T) {
	assert.Equal(t, "nodejs", Normalize("Node JS"))
	assert.Equal(t, Normalize("Node JS"), Normalize("nodejs"), "空格应被去除")
	assert.NotEqual(t, Normalize("Node.js"), Normalize("node js"), "标点不同不应相等")
	assert.Equal(t, "gitlabci", Normalize(" GitLab-CI "))

	for _, s := range []string{"Node.js", "C++", "machine learning", "CI/CD"} {
		n := Normalize(s)
		assert.Equal(t, n, Normalize(n), "归一化应幂等: %s", s)
	}
}

func TestFindMatchDirect(t *testing.T) {
	m := New()
	match := m.FindMatch(context.Background(), "python", []string{"Python"}, nil)
	require.NotNil(t, match)
	assert.Equal(t, types.MatchDirect, match.MatchType)
	assert.Equal(t, "Python", match.Skill, "应返回简历侧的技能名")
	assert.Equal(t, 1.0, match.SimilarityScore)
	assert.Empty(t, match.RelatedSkill)
}

func TestFindMatchDirectDominates(t *testing.T) {
	emb := &fakeEmbedder{}
	m := New(WithEmbedder(emb))
	match := m.FindMatch(context.Background(), "docker", []string{"kubernetes", "Docker"}, nil)
	require.NotNil(t, match)
	assert.Equal(t, types.MatchDirect, match.MatchType, "存在直接匹配时必须返回direct")
	assert.Equal(t, "Docker", match.Skill)
	assert.Equal(t, 0, emb.calls, "直接匹配时不应调用向量化")
}

func TestFindMatchTaxonomy(t *testing.T) {
	m := New()
	match := m.FindMatch(context.Background(), "kubernetes", []string{"docker"}, nil)
	require.NotNil(t, match)
	assert.Equal(t, types.MatchRelated, match.MatchType)
	assert.Equal(t, "docker", match.Skill)
	assert.Equal(t, "kubernetes", match.RelatedSkill)
	assert.Equal(t, TaxonomySimilarity, match.SimilarityScore)

	match = m.FindMatch(context.Background(), "junit", []string{"pytest"}, nil)
	require.NotNil(t, match, "junit同时属于java和testing，应继续尝试后面的分类")
	assert.Equal(t, "pytest", match.Skill)
}

func TestFindMatchSemanticFallback(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"tensorflow": {1, 0},
		"pytorch":    {0.9, 0.1},
		"excel":      {0, 1},
	}}
	m := New(WithEmbedder(emb))

	match := m.FindMatch(context.Background(), "tensorflow", []string{"excel", "pytorch"}, nil)
	require.NotNil(t, match)
	assert.Equal(t, "pytorch", match.Skill)
	assert.Greater(t, match.SimilarityScore, 0.7)
	assert.Less(t, match.SimilarityScore, 1.0)
	assert.Equal(t, 1, emb.calls)

	none := m.FindMatch(context.Background(), "tensorflow", []string{"excel"}, nil)
	assert.Nil(t, none, "相似度不超过阈值且无子串关系时不应匹配")
}

func TestFindMatchEmbedderErrorDegrades(t *testing.T) {
	m := New(WithEmbedder(&fakeEmbedder{err: errors.New("模型不可用")}))
	match := m.FindMatch(context.Background(), "react", []string{"React Native"}, nil)
	require.NotNil(t, match, "向量化失败时应回退到子串匹配")
	assert.Equal(t, SubstringSimilarity, match.SimilarityScore)
	assert.Equal(t, "React Native", match.Skill)
}

func TestFindMatchSubstringAndNone(t *testing.T) {
	m := New()
	match := m.FindMatch(context.Background(), "Spring Boot", []string{"spring"}, nil)
	require.NotNil(t, match)
	assert.Equal(t, types.MatchRelated, match.MatchType)
	assert.Equal(t, SubstringSimilarity, match.SimilarityScore)

	assert.Nil(t, m.FindMatch(context.Background(), "rust", []string{"go", "python"}, nil))
	assert.Nil(t, m.FindMatch(context.Background(), "rust", nil, nil), "没有候选技能时返回nil")
	assert.Nil(t, m.FindMatch(context.Background(), "rust", []string{" - "}, nil), "归一化为空的候选技能应被忽略")
}

func TestSkillYears(t *testing.T) {
	exp := []types.ExperienceEntry{
		{StartDate: "Jan 2018", EndDate: "Dec 2020", Description: "Built services in Python and Go"},
		{StartDate: "2021", EndDate: "2023", Description: "python data pipelines"},
		{StartDate: "2022", EndDate: "Present", Description: "Python tooling"},
		{StartDate: "2020", EndDate: "2015", Description: "python typo dates"},
		{StartDate: "2010", EndDate: "2012", Description: "Java only"},
	}

	years := SkillYears("Python", exp)
	require.NotNil(t, years)
	assert.Equal(t, 4.0, *years, "无法解析和负值的经历不计入")

	assert.Nil(t, SkillYears("Rust", exp), "没有经历时应返回nil")
	assert.Nil(t, SkillYears("python", exp[2:4]), "合计为0时应返回nil")
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, "languages", Categorize("Go"))
	assert.Equal(t, "devops", Categorize("docker"), "按顺序取第一个命中的分类")
	assert.Equal(t, "backend", Categorize(" Node.js "))
	assert.Equal(t, OtherCategory, Categorize("cobol"))
}

func TestTaxonomyCategoryOf(t *testing.T) {
	tax := DefaultTaxonomy()
	c, ok := tax.CategoryOf("GitLab CI")
	require.True(t, ok)
	assert.Equal(t, "ci_cd", c)
	_, ok = tax.CategoryOf("python")
	assert.False(t, ok, "分类名本身不在成员列表中")
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 1}))
}
