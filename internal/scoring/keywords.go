package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"resume-matcher/internal/extractor"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/types"
)

// keywordRecommendations 关键词分析的推荐语，比例取值0到1
var keywordRecommendations = []struct {
	min   float64
	label string
}{
	{0.8, "Excellent Match! Your skills align very well with the job requirements."},
	{0.6, "Good Match. You have many of the required skills but could improve in some areas."},
	{0.4, "Moderate Match. Consider gaining more experience with the required skills."},
	{math.Inf(-1), "Needs Improvement. The job requires skills that are not currently on your resume."},
}

var keywordLevels = []struct {
	min  float64
	text string
}{
	{0.8, "This is an excellent match for the position!"},
	{0.6, "This is a good match, but there's room for improvement."},
	{0.4, "This is a moderate match. Consider adding more relevant skills."},
	{math.Inf(-1), "The match is below average. Consider gaining more relevant experience."},
}

// AnalyzeKeywords 基于技能关键词集合比较简历和岗位描述
// 简历有技能列表时使用技能名(小写)，否则从概述或原文中提取关键词
// 岗位技能从描述全文提取，结果列表按字母排序
func AnalyzeKeywords(resume types.ResumeRecord, jd types.JobDescriptionRecord) types.KeywordAnalysis {
	resumeSet := map[string]struct{}{}
	if len(resume.Skills) > 0 {
		for _, s := range resume.Skills {
			if name := strings.ToLower(strings.TrimSpace(s.Name)); name != "" {
				resumeSet[name] = struct{}{}
			}
		}
	} else {
		text := resume.Summary
		if strings.TrimSpace(text) == "" {
			text = resume.RawText
		}
		for _, k := range extractor.ExtractKeywords(text) {
			resumeSet[k] = struct{}{}
		}
	}

	jobSet := map[string]struct{}{}
	for _, k := range extractor.ExtractKeywords(jd.Description) {
		jobSet[k] = struct{}{}
	}

	var matched, missing []string
	for k := range jobSet {
		if _, ok := resumeSet[k]; ok {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	pct := 0.0
	if len(jobSet) > 0 {
		pct = float64(len(matched)) / float64(len(jobSet))
	}

	return types.KeywordAnalysis{
		MatchPercentage: pct,
		ResumeSkills:    sortedKeys(resumeSet),
		JobSkills:       sortedKeys(jobSet),
		MatchingSkills:  analyzed(matched, jd),
		MissingSkills:   analyzed(missing, jd),
		Recommendation:  keywordRecommendation(pct),
		Analysis:        keywordAnalysisText(pct, len(matched), len(jobSet), len(missing)),
		ConfidenceScore: round2(math.Min(1, pct*1.2)),
	}
}

func analyzed(names []string, jd types.JobDescriptionRecord) []types.AnalyzedSkill {
	out := make([]types.AnalyzedSkill, 0, len(names))
	for _, n := range names {
		out = append(out, types.AnalyzedSkill{
			Name:     n,
			Category: matcher.Categorize(n),
			Weight:   SkillWeight(n, jd),
		})
	}
	return out
}

// SkillWeight 必需技能权重×2，加分技能权重×1.5，其他为1
func SkillWeight(skill string, jd types.JobDescriptionRecord) float64 {
	for _, s := range jd.RequiredSkills {
		if strings.EqualFold(s.Name, skill) {
			return weightOrDefault(s.Weight) * 2
		}
	}
	for _, s := range jd.PreferredSkills {
		if strings.EqualFold(s.Name, skill) {
			return weightOrDefault(s.Weight) * 1.5
		}
	}
	return 1.0
}

func weightOrDefault(w float64) float64 {
	if w == 0 {
		return 1.0
	}
	return w
}

func keywordRecommendation(pct float64) string {
	for _, r := range keywordRecommendations {
		if pct >= r.min {
			return r.label
		}
	}
	return ""
}

func keywordAnalysisText(pct float64, matched, total, missing int) []string {
	analysis := []string{
		fmt.Sprintf("Your resume matches %.1f%% of the required skills (%d out of %d).", pct*100, matched, total),
	}
	for _, l := range keywordLevels {
		if pct >= l.min {
			analysis = append(analysis, l.text)
			break
		}
	}
	if missing > 0 {
		analysis = append(analysis, fmt.Sprintf("You're missing %d key skills that are required for this position.", missing))
	}
	if pct < 0.8 {
		if missing > 0 {
			analysis = append(analysis, "Consider adding the missing skills to your resume.")
		}
		analysis = append(analysis, "Highlight your most relevant experience and projects.")
	}
	return analysis
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
