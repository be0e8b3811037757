package jdparser

import (
	"testing"

	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJD = `Senior Backend Engineer at Initech.
We build payment systems.

Required Skills: Python (3+ years), Docker, Kubernetes and SQL.

Nice to have: React, GraphQL, Python.

Requirements: 5+ years of experience. Bachelor's degree in Computer Science or MS preferred.`

func skillNames(skills []types.RequiredSkill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}

func TestParseStructuredJD(t *testing.T) {
	jd := New().Parse(sampleJD)

	assert.Equal(t, "Senior Backend Engineer", jd.Title)
	assert.Equal(t, []string{"Python", "SQL", "Docker", "Kubernetes"}, skillNames(jd.RequiredSkills), "必需技能按词表顺序")
	assert.Equal(t, []string{"React", "GraphQL"}, skillNames(jd.PreferredSkills), "已是必需技能的不再出现在加分项")

	python := jd.RequiredSkills[0]
	require.NotNil(t, python.Years)
	assert.Equal(t, 3.0, *python.Years)
	assert.Equal(t, types.ImportanceRequired, python.Importance)
	assert.Equal(t, 1.0, python.Weight)
	assert.Nil(t, jd.RequiredSkills[2].Years)

	assert.Equal(t, types.ImportancePreferred, jd.PreferredSkills[0].Importance)
	assert.Equal(t, 0.5, jd.PreferredSkills[0].Weight)

	require.NotNil(t, jd.MinExperience)
	assert.Equal(t, 5.0, *jd.MinExperience)
	assert.Equal(t, "Bachelor", jd.EducationLevel)
	assert.NotContains(t, jd.Description, "\n", "描述应为展平后的文本")
}

func TestParseWithoutSectionHeaders(t *testing.T) {
	jd := New().Parse("Looking for a Data Scientist with Python and Java 2-4 years.\nMust know AWS. 2 yrs experience needed.")

	assert.Equal(t, "Data Scientist", jd.Title)
	assert.Equal(t, []string{"Python", "Java", "AWS"}, skillNames(jd.RequiredSkills), "没有段落标题时全文视为必需段")
	assert.Empty(t, jd.PreferredSkills)
	assert.Nil(t, jd.RequiredSkills[0].Years, "年限必须紧跟技能名")
	require.NotNil(t, jd.RequiredSkills[1].Years)
	assert.Equal(t, 2.0, *jd.RequiredSkills[1].Years, "区间取下限")

	require.NotNil(t, jd.MinExperience)
	assert.Equal(t, 2.0, *jd.MinExperience)
	assert.Empty(t, jd.EducationLevel)
}

func TestParseTitleFallbacks(t *testing.T) {
	p := New()
	assert.Equal(t, "We are hiring.", p.Parse("We are hiring. Join us!").Title, "没有命中规则时取第一句")
	assert.Equal(t, "Product Manager", p.Parse("About the role. You will be our Product Manager.").Title)

	empty := p.Parse("")
	assert.Equal(t, DefaultTitle, empty.Title)
	assert.Empty(t, empty.RequiredSkills)
	assert.NotNil(t, empty.RequiredSkills)
	assert.Nil(t, empty.MinExperience)
}

func TestSectionsStopAtBlankLine(t *testing.T) {
	required, preferred := Sections("Must have: Go\nRust\n\nOther text with Java\n\nPreferred Qualifications: Kafka")
	assert.Equal(t, " Go\nRust", required)
	assert.Equal(t, " Kafka", preferred)

	required, preferred = Sections("Just Python")
	assert.Equal(t, "Just Python", required)
	assert.Empty(t, preferred)
}

func TestMinExperiencePatterns(t *testing.T) {
	cases := map[string]float64{
		"3 years of experience with Go": 3,
		"at least 4 yrs in backend":     4,
		"minimum 2.5 years":             2.5,
	}
	for text, want := range cases {
		got := extractMinExperience(text)
		require.NotNil(t, got, text)
		assert.Equal(t, want, *got, text)
	}
	assert.Nil(t, extractMinExperience("experience with 3 teams"))
}

func TestCustomVocabulary(t *testing.T) {
	p := New(WithSkills([]string{"Go", "Rust"}), WithEducationLevels([]string{"PhD"}))
	jd := p.Parse("Required: Go 5 years. Preferred: Rust. PhD welcome.")
	assert.Equal(t, []string{"Go", "Rust"}, skillNames(jd.RequiredSkills), "同一段落内没有空行时必需段延续到末尾")
	assert.Equal(t, "PhD", jd.EducationLevel)
}
