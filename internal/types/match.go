package types

// MatchType 技能匹配方式
type MatchType string

const (
	MatchDirect  MatchType = "direct"
	MatchRelated MatchType = "related"
)

// 推荐等级
const (
	TierStrongMatch    = "Strong Match"
	TierGoodMatch      = "Good Match"
	TierConsider       = "Consider"
	TierNotRecommended = "Not Recommended"
)

// SkillMatch 一项岗位技能的匹配结果
type SkillMatch struct {
	Skill           string    `json:"skill"`
	MatchType       MatchType `json:"match_type"`
	Years           *float64  `json:"years,omitempty"`
	SimilarityScore float64   `json:"similarity_score"`
	RelatedSkill    string    `json:"related_skill,omitempty"`
}

// MatchReport 简历与岗位的匹配报告，构建后不再修改
type MatchReport struct {
	ResumeID               string          `json:"resume_id"`
	MatchPercentage        float64         `json:"match_percentage"`
	SkillMatches           []SkillMatch    `json:"skill_matches"`
	MissingSkills          []RequiredSkill `json:"missing_skills"`
	Recommendation         string          `json:"recommendation"`
	ConfidenceScore        float64         `json:"confidence_score"`
	Explanation            []string        `json:"explanation"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
}

// AnalyzedSkill 关键词分析中的一项技能
type AnalyzedSkill struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
}

// KeywordAnalysis 基于关键词集合的简历/岗位对比报告，比例字段取值0到1
type KeywordAnalysis struct {
	MatchPercentage float64         `json:"match_percentage"`
	ResumeSkills    []string        `json:"resume_skills"`
	JobSkills       []string        `json:"job_skills"`
	MatchingSkills  []AnalyzedSkill `json:"matching_skills"`
	MissingSkills   []AnalyzedSkill `json:"missing_skills"`
	Recommendation  string          `json:"recommendation"`
	Analysis        []string        `json:"analysis"`
	ConfidenceScore float64         `json:"confidence_score"`
}
