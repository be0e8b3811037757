package extractor

import (
	"regexp"
	"sort"
	"strings"
)

// techKeywords 项目和工作经历中识别的技术名称
var techKeywords = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "PHP", "Swift",
	"HTML", "CSS", "SQL", "NoSQL", "React", "Angular", "Vue", "Node.js", "Express",
	"Django", "Flask", "Spring", "ASP.NET", "Ruby on Rails", "Laravel",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "Git",
}

// commonSkills 关键词分析和轻量解析使用的通用技能词表(小写)
var commonSkills = []string{
	"python", "javascript", "java", "c++", "c#", "ruby", "php", "swift", "kotlin", "go",
	"django", "flask", "react", "angular", "vue", "node.js", "express", "spring", "laravel",
	"sql", "postgresql", "mysql", "mongodb", "redis", "oracle", "sql server",
	"docker", "kubernetes", "aws", "azure", "google cloud", "devops", "ci/cd",
	"git", "github", "gitlab", "bitbucket", "jenkins", "ansible", "terraform",
	"machine learning", "deep learning", "ai", "data science", "nlp", "computer vision",
	"agile", "scrum", "kanban", "project management",
}

// Keyword 带边界匹配规则的关键词
type Keyword struct {
	Term    string
	pattern *regexp.Regexp
}

// 左右两侧不能紧贴字母数字，左侧额外排除 + # . 以免 "C" 类前缀误命中，右侧额外排除 + #
// 这样 C++、C#、Node.js 这类以符号结尾的词也能整词匹配
const (
	leftBoundary  = `(?:^|[^A-Za-z0-9_+#.])`
	rightBoundary = `(?:$|[^A-Za-z0-9_+#])`
)

// NewKeyword 编译忽略大小写的整词关键词
func NewKeyword(term string) Keyword {
	return Keyword{
		Term:    term,
		pattern: regexp.MustCompile(`(?i)` + leftBoundary + regexp.QuoteMeta(term) + rightBoundary),
	}
}

// In 判断text中是否出现该关键词
func (k Keyword) In(text string) bool {
	return k.pattern.MatchString(text)
}

// KeywordSet 有序关键词集合
type KeywordSet []Keyword

// NewKeywordSet 按给定顺序编译关键词
func NewKeywordSet(terms []string) KeywordSet {
	set := make(KeywordSet, len(terms))
	for i, t := range terms {
		set[i] = NewKeyword(t)
	}
	return set
}

// FindIn 按词表顺序返回text中出现的关键词
func (s KeywordSet) FindIn(text string) []string {
	var found []string
	for _, k := range s {
		if k.In(text) {
			found = append(found, k.Term)
		}
	}
	return found
}

var (
	techKeywordSet = NewKeywordSet(techKeywords)
	commonSkillSet = NewKeywordSet(commonSkills)
)

// FindTechnologies 返回文本中出现的技术名称，按词表顺序
func FindTechnologies(text string) []string {
	return techKeywordSet.FindIn(text)
}

// ExtractKeywords 用通用技能词表提取技能，结果小写、去重并按字母排序
func ExtractKeywords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	found := commonSkillSet.FindIn(text)
	sort.Strings(found)
	return found
}
