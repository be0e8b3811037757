// Package scoring 汇总技能匹配结果，生成匹配百分比、推荐等级、解释和改进建议
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// tier 推荐等级阈值及对应解释
type tier struct {
	min         float64
	label       string
	explanation string
}

// tiers 按阈值从高到低排列，第一个满足的生效
var tiers = []tier{
	{min: 85, label: types.TierStrongMatch, explanation: "Strong overall match with %.1f%% alignment to job requirements"},
	{min: 70, label: types.TierGoodMatch, explanation: "Good match with %.1f%% alignment to job requirements"},
	{min: 50, label: types.TierConsider, explanation: "Moderate match with %.1f%% alignment to job requirements"},
	{min: math.Inf(-1), label: types.TierNotRecommended, explanation: "Low match with only %.1f%% alignment to job requirements"},
}

// Engine 评分引擎，构建后只读
type Engine struct {
	matcher *matcher.Matcher
	logger  *zerolog.Logger
}

// Option Engine选项
type Option func(*Engine)

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine 创建评分引擎，m 为nil时使用默认Matcher
func NewEngine(m *matcher.Matcher, opts ...Option) *Engine {
	if m == nil {
		m = matcher.New()
	}
	e := &Engine{matcher: m, logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score 按必需技能、加分技能的顺序逐项匹配并生成报告
// 未匹配的必需技能记为缺失，未匹配的加分技能直接忽略
func (e *Engine) Score(ctx context.Context, resume types.ResumeRecord, jd types.JobDescriptionRecord) types.MatchReport {
	candidates := resume.SkillNames()
	matches := []types.SkillMatch{}
	missing := []types.RequiredSkill{}
	var totalWeight, matchedWeight float64

	score := func(skill types.RequiredSkill, recordMissing bool) {
		totalWeight += skill.Weight
		m := e.matcher.FindMatch(ctx, skill.Name, candidates, resume.Experience)
		if m == nil {
			if recordMissing {
				missing = append(missing, skill)
			}
			return
		}
		matches = append(matches, *m)
		if m.MatchType == types.MatchDirect {
			matchedWeight += skill.Weight
		} else {
			matchedWeight += skill.Weight * m.SimilarityScore
		}
	}
	for _, s := range jd.RequiredSkills {
		score(s, true)
	}
	for _, s := range jd.PreferredSkills {
		score(s, false)
	}

	percentage := 0.0
	if totalWeight > 0 {
		percentage = matchedWeight / totalWeight * 100
	}

	report := types.MatchReport{
		ResumeID:        resume.ID,
		MatchPercentage: round2(percentage),
		SkillMatches:    matches,
		MissingSkills:   missing,
		ConfidenceScore: round2(confidence(resume, len(matches))),
	}
	report.Recommendation, report.Explanation = e.explain(percentage, totalWeight, matches, missing)
	report.ImprovementSuggestions = e.suggest(resume, jd, matches, missing)

	e.logger.Debug().
		Str("resume_id", resume.ID).
		Float64("match_percentage", report.MatchPercentage).
		Int("matches", len(matches)).
		Int("missing", len(missing)).
		Msg("匹配评分完成")
	return report
}

// confidence 五项完整性检查中满足的比例
func confidence(resume types.ResumeRecord, matchCount int) float64 {
	checks := []bool{
		!resume.ContactInfo.IsEmpty(),
		len(resume.Skills) > 0,
		len(resume.Education) > 0,
		len(resume.Experience) > 0,
		matchCount > 0,
	}
	satisfied := 0
	for _, ok := range checks {
		if ok {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(checks))
}

func (e *Engine) explain(percentage, totalWeight float64, matches []types.SkillMatch, missing []types.RequiredSkill) (string, []string) {
	var label string
	explanation := []string{}
	for _, t := range tiers {
		if percentage >= t.min {
			label = t.label
			explanation = append(explanation, fmt.Sprintf(t.explanation, percentage))
			break
		}
	}
	if totalWeight == 0 {
		explanation = append(explanation, "No weighted skill requirements were found in the job description")
	}

	direct, related := 0, 0
	for _, m := range matches {
		if m.MatchType == types.MatchDirect {
			direct++
		} else {
			related++
		}
	}
	if direct > 0 {
		explanation = append(explanation, fmt.Sprintf("Directly matched %d skills", direct))
	}
	if related > 0 {
		explanation = append(explanation, fmt.Sprintf("Found %d related skills that could be leveraged", related))
	}
	if critical := criticalNames(missing); len(critical) > 0 {
		explanation = append(explanation, "Missing critical skills: "+strings.Join(critical, ", "))
	}
	return label, explanation
}

func (e *Engine) suggest(resume types.ResumeRecord, jd types.JobDescriptionRecord, matches []types.SkillMatch, missing []types.RequiredSkill) []string {
	suggestions := []string{}

	if critical := criticalNames(missing); len(critical) > 0 {
		suggestions = append(suggestions, "Consider acquiring these critical skills: "+strings.Join(critical, ", "))
	}

	// 按相关技能分类聚合缺失技能，分类顺序取首次出现的顺序
	var order []string
	byCategory := map[string][]string{}
	for _, s := range missing {
		c, ok := e.matcher.Taxonomy().CategoryOf(s.Name)
		if !ok {
			continue
		}
		if _, seen := byCategory[c]; !seen {
			order = append(order, c)
		}
		byCategory[c] = append(byCategory[c], s.Name)
	}
	for _, c := range order {
		if skills := byCategory[c]; len(skills) > 1 {
			suggestions = append(suggestions, fmt.Sprintf("Consider improving %s skills, particularly: %s", c, strings.Join(skills, ", ")))
		}
	}

	if jd.MinExperience != nil {
		if have := skillExperience(matches); have < *jd.MinExperience {
			suggestions = append(suggestions, fmt.Sprintf("Highlight more relevant experience: the position asks for at least %.1f years and the resume shows %.1f", *jd.MinExperience, have))
		}
	}

	if level := strings.TrimSpace(jd.EducationLevel); level != "" && !hasEducationLevel(resume.Education, level) {
		suggestions = append(suggestions, fmt.Sprintf("The position expects a %s degree; list it clearly if you hold one", level))
	}
	return suggestions
}

// criticalNames 重要程度为 required 的缺失技能
func criticalNames(missing []types.RequiredSkill) []string {
	var names []string
	for _, s := range missing {
		if s.Importance == types.ImportanceRequired {
			names = append(names, s.Name)
		}
	}
	return names
}

// skillExperience 取匹配技能中最长的经验年限
func skillExperience(matches []types.SkillMatch) float64 {
	best := 0.0
	for _, m := range matches {
		if m.Years != nil && *m.Years > best {
			best = *m.Years
		}
	}
	return best
}

func hasEducationLevel(education []types.EducationEntry, level string) bool {
	level = strings.ToLower(level)
	for _, e := range education {
		if strings.Contains(strings.ToLower(e.Degree), level) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
