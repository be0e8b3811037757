package types

// Importance 岗位技能的重要程度
type Importance string

const (
	ImportanceRequired  Importance = "required"
	ImportancePreferred Importance = "preferred"
)

// RequiredSkill 岗位要求的一项技能
type RequiredSkill struct {
	Name       string     `json:"name"`
	Years      *float64   `json:"years,omitempty"`
	Importance Importance `json:"importance"`
	Weight     float64    `json:"weight"`
}

// JobDescriptionRecord 结构化的岗位描述
type JobDescriptionRecord struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	RequiredSkills  []RequiredSkill `json:"required_skills"`
	PreferredSkills []RequiredSkill `json:"preferred_skills"`
	MinExperience   *float64        `json:"min_experience,omitempty"`
	EducationLevel  string          `json:"education_level,omitempty"`
}
