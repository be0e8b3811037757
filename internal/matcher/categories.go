package matcher

import "strings"

// OtherCategory 分类表中找不到时使用的分类
const OtherCategory = "other"

type skillCategory struct {
	name   string
	skills map[string]struct{}
}

func newSkillCategory(name string, skills ...string) skillCategory {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return skillCategory{name: name, skills: set}
}

// skillCategories 技能归类表，按顺序取第一个命中的分类
var skillCategories = []skillCategory{
	newSkillCategory("languages", "python", "javascript", "java", "c++", "c#", "ruby", "php", "swift", "kotlin", "go", "typescript"),
	newSkillCategory("frontend", "react", "angular", "vue", "html", "css", "sass", "bootstrap", "tailwind", "redux"),
	newSkillCategory("backend", "node.js", "express", "django", "flask", "spring", "laravel", "ruby on rails", "asp.net"),
	newSkillCategory("database", "sql", "mysql", "postgresql", "mongodb", "redis", "oracle", "sql server", "dynamodb"),
	newSkillCategory("devops", "docker", "kubernetes", "aws", "azure", "gcp", "google cloud", "ci/cd", "jenkins", "github actions"),
	newSkillCategory("tools", "git", "github", "gitlab", "jira", "confluence", "docker", "kubernetes", "ansible", "terraform"),
	newSkillCategory("ai_ml", "machine learning", "deep learning", "ai", "data science", "nlp", "computer vision", "tensorflow", "pytorch"),
	newSkillCategory("mobile", "react native", "flutter", "ios", "android", "swift", "kotlin"),
	newSkillCategory("testing", "jest", "mocha", "pytest", "junit", "selenium", "cypress"),
	newSkillCategory("cloud", "aws", "azure", "gcp", "google cloud", "heroku", "digitalocean"),
	newSkillCategory("methodologies", "agile", "scrum", "kanban", "lean", "devops", "ci/cd"),
}

// Categorize 把技能名归入固定分类，未命中返回 "other"
func Categorize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	for _, c := range skillCategories {
		if _, ok := c.skills[s]; ok {
			return c.name
		}
	}
	return OtherCategory
}
