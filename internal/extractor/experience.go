package extractor

import (
	"strings"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"
)

var experienceSectionKeywords = []string{"EXPERIENCE", "EMPLOYMENT", "WORK"}

// roleKeywords 出现这些词的行视为新一段经历的开始
var roleKeywords = []string{"intern", "engineer", "developer", "analyst"}

// ExtractExperience 解析第一个工作经历章节
func ExtractExperience(sections *segmenter.SectionMap) []types.ExperienceEntry {
	text, ok := sections.Find(experienceSectionKeywords...)
	if !ok {
		return []types.ExperienceEntry{}
	}
	return ParseExperience(text)
}

// ParseExperience 按年份或职位关键词切分经历
// 每组第一行为职位和日期，第二行为公司，其余为描述
func ParseExperience(text string) []types.ExperienceEntry {
	var groups [][]string
	for _, line := range nonEmptyLines(text) {
		if isExperienceBoundary(line) || len(groups) == 0 {
			groups = append(groups, []string{line})
			continue
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], line)
	}

	entries := []types.ExperienceEntry{}
	for _, g := range groups {
		entry := parseExperienceGroup(g)
		if entry.Position == "" && entry.Company == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// isExperienceBoundary 含年份或职位关键词的行开启新经历，项目符号行也不例外
func isExperienceBoundary(line string) bool {
	if yearToken.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, kw := range roleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func parseExperienceGroup(lines []string) types.ExperienceEntry {
	entry := types.ExperienceEntry{Skills: []string{}}
	first := stripBullet(lines[0])

	dates := yearToken.FindAllString(first, 2)
	for i := range dates {
		dates[i] = strings.TrimSpace(dates[i])
	}
	current := presentPattern.MatchString(first)

	switch {
	case len(dates) >= 2:
		entry.StartDate, entry.EndDate = dates[0], dates[1]
	case len(dates) == 1 && current:
		entry.StartDate = dates[0]
	case len(dates) == 1:
		entry.EndDate = dates[0]
	}
	if current {
		entry.Current = true
		entry.EndDate = "Present"
	}

	position := yearToken.ReplaceAllString(first, "")
	position = presentPattern.ReplaceAllString(position, "")
	position = rangeSeparator.ReplaceAllStringFunc(position, func(s string) string {
		if strings.TrimSpace(s) == "to" {
			return " "
		}
		return s
	})
	entry.Position = cleanPosition(position)

	if len(lines) > 1 {
		entry.Company = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		entry.Description = strings.Join(lines[2:], "\n")
		if techs := FindTechnologies(entry.Description); len(techs) > 0 {
			entry.Skills = techs
		}
	}
	return entry
}

// cleanPosition 去掉日期移除后残留的分隔符
func cleanPosition(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -–—|,()")
}
