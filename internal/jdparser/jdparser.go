// Package jdparser 把岗位描述自由文本解析为结构化的岗位要求
// 解析从不失败，没有命中的字段保持为空
package jdparser

import (
	"regexp"
	"strconv"
	"strings"

	"resume-matcher/internal/extractor"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// DefaultTitle 文本中没有任何句子时使用的岗位名称
const DefaultTitle = "Software Engineer"

const (
	requiredWeight  = 1.0
	preferredWeight = 0.5
)

// DefaultSkills 岗位技能词表
var DefaultSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "PHP",
	"HTML", "CSS", "SQL", "NoSQL", "React", "Angular", "Vue", "Node.js",
	"Django", "Flask", "Spring", "ASP.NET", "AWS", "Azure", "Docker",
	"Kubernetes", "Git", "CI/CD", "REST API", "GraphQL", "MongoDB",
}

// DefaultEducationLevels 学历关键词，按顺序取第一个出现的
var DefaultEducationLevels = []string{
	"Bachelor", "BS", "BA", "B.S.", "B.A.", "Master", "MS", "MA", "M.S.",
	"M.A.", "PhD", "Ph.D.", "Doctorate", "Associate", "Diploma",
}

// titlePatterns 岗位名称规则，逐句尝试，第一个命中的生效
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:(?:Senior|Junior|Lead|Principal|Staff)\s+)?(?:(?:Software|Frontend|Backend|Full Stack|DevOps|ML|AI)\s+)?(?:Engineer|Developer|Architect)\b`),
	regexp.MustCompile(`(?i)\b(?:Data|Machine Learning|AI|Business Intelligence)\s*(?:Scientist|Engineer|Analyst)\b`),
	regexp.MustCompile(`(?i)\b(?:Product|Project|Program)\s*(?:Manager|Lead|Owner)\b`),
}

var (
	requiredSection  = regexp.MustCompile(`(?is)\b(?:required|requirements|must have|key|essential)(?:\s+skills|\s+qualifications)?\s*:(.*?)(?:\n[ \t]*\n|\z)`)
	preferredSection = regexp.MustCompile(`(?is)\b(?:preferred|nice to have|plus|desired)(?:\s+skills|\s+qualifications)?\s*:(.*?)(?:\n[ \t]*\n|\z)`)
	sentencePattern  = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// minExperiencePatterns 最低工作年限规则，第一个命中的生效
var minExperiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\+?\s*(?:years?|yrs?)(?:\s+of)?\s+experience`),
	regexp.MustCompile(`(?i)(?:minimum|min\.?|at\s+least)\s+(\d+(?:\.\d+)?)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:years?|yrs?)\s+(?:of\s+)?experience\s+(?:required|needed)`),
}

type vocabSkill struct {
	keyword extractor.Keyword
	years   *regexp.Regexp
}

// Parser 岗位描述解析器，构建后只读
type Parser struct {
	skills          []vocabSkill
	educationLevels extractor.KeywordSet
	logger          *zerolog.Logger
}

// Option Parser选项
type Option func(*parserOptions)

type parserOptions struct {
	skills []string
	levels []string
	logger *zerolog.Logger
}

// WithSkills 替换技能词表
func WithSkills(skills []string) Option {
	return func(o *parserOptions) {
		if len(skills) > 0 {
			o.skills = skills
		}
	}
}

// WithEducationLevels 替换学历关键词
func WithEducationLevels(levels []string) Option {
	return func(o *parserOptions) {
		if len(levels) > 0 {
			o.levels = levels
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(o *parserOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// New 创建Parser
func New(opts ...Option) *Parser {
	o := &parserOptions{skills: DefaultSkills, levels: DefaultEducationLevels, logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	p := &Parser{
		educationLevels: extractor.NewKeywordSet(o.levels),
		logger:          o.logger,
	}
	for _, s := range o.skills {
		p.skills = append(p.skills, vocabSkill{
			keyword: extractor.NewKeyword(s),
			years:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s) + `\s*[(\[]?\s*(\d+(?:\.\d+)?)(?:\+|\s*-\s*\d+(?:\.\d+)?)?\s*(?:years?|yrs?)\b`),
		})
	}
	return p
}

// Parse 解析岗位描述
func (p *Parser) Parse(text string) types.JobDescriptionRecord {
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)

	required, preferred := p.extractSkills(text)
	jd := types.JobDescriptionRecord{
		Title:           extractTitle(flat),
		Description:     flat,
		RequiredSkills:  required,
		PreferredSkills: preferred,
		MinExperience:   extractMinExperience(flat),
		EducationLevel:  p.extractEducationLevel(flat),
	}

	p.logger.Debug().
		Str("title", jd.Title).
		Int("required", len(required)).
		Int("preferred", len(preferred)).
		Msg("岗位描述解析完成")
	return jd
}

func extractTitle(flat string) string {
	sentences := Sentences(flat)
	for _, s := range sentences {
		for _, re := range titlePatterns {
			if m := re.FindString(s); m != "" {
				return strings.TrimSpace(m)
			}
		}
	}
	if len(sentences) > 0 {
		return sentences[0]
	}
	return DefaultTitle
}

// Sentences 按句末标点切分，去掉空白句
func Sentences(text string) []string {
	var out []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Sections 返回必需技能段和加分技能段，均未找到时全文视为必需段
// 段落在空行或文本结尾处结束
func Sections(text string) (required, preferred string) {
	if m := requiredSection.FindStringSubmatch(text); m != nil {
		required = m[1]
	}
	if m := preferredSection.FindStringSubmatch(text); m != nil {
		preferred = m[1]
	}
	if strings.TrimSpace(required) == "" && strings.TrimSpace(preferred) == "" {
		required = text
	}
	return required, preferred
}

func (p *Parser) extractSkills(text string) ([]types.RequiredSkill, []types.RequiredSkill) {
	reqText, prefText := Sections(text)
	required := []types.RequiredSkill{}
	preferred := []types.RequiredSkill{}

	for _, s := range p.skills {
		switch {
		case s.keyword.In(reqText):
			required = append(required, types.RequiredSkill{
				Name:       s.keyword.Term,
				Years:      findYears(s.years, reqText),
				Importance: types.ImportanceRequired,
				Weight:     requiredWeight,
			})
		case s.keyword.In(prefText):
			preferred = append(preferred, types.RequiredSkill{
				Name:       s.keyword.Term,
				Years:      findYears(s.years, prefText),
				Importance: types.ImportancePreferred,
				Weight:     preferredWeight,
			})
		}
	}
	return required, preferred
}

// findYears 区间取下限，"3+" 取3
func findYears(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func extractMinExperience(text string) *float64 {
	for _, re := range minExperiencePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v
		}
	}
	return nil
}

func (p *Parser) extractEducationLevel(text string) string {
	for _, k := range p.educationLevels {
		if k.In(text) {
			return k.Term
		}
	}
	return ""
}
