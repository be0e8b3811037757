package extractor

import (
	"strings"

	"resume-matcher/internal/matcher"
	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"
)

// skillSectionKeywords 标题含这些词的章节视为技能章节
var skillSectionKeywords = []string{"SKILL", "EXPERTISE", "COMPETENC"}

// ExtractSkills 解析技能章节中 "分类: 技能1, 技能2" 形式的行，不含冒号的行忽略
func ExtractSkills(sections *segmenter.SectionMap) []types.SkillEntry {
	text, ok := sections.Find(skillSectionKeywords...)
	if !ok {
		return []types.SkillEntry{}
	}
	return ParseSkills(text)
}

// ParseSkills 解析技能章节文本
// 分类取冒号前内容并转小写，为空时按技能名查归类表
func ParseSkills(text string) []types.SkillEntry {
	skills := []types.SkillEntry{}
	for _, raw := range strings.Split(text, "\n") {
		line := stripBullet(raw)
		category, list, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		category = strings.ToLower(strings.TrimSpace(category))
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			c := category
			if c == "" {
				c = matcher.Categorize(name)
			}
			skills = append(skills, types.SkillEntry{Name: name, Category: c})
		}
	}
	return skills
}

// stripBullet 去掉行首的项目符号和空白
func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	for _, b := range bulletMarkers {
		if strings.HasPrefix(line, b) {
			return strings.TrimSpace(strings.TrimPrefix(line, b))
		}
	}
	return line
}

var bulletMarkers = []string{"•", "▪", "◦", "·", "*", "- ", "– "}

func hasBullet(line string) bool {
	line = strings.TrimSpace(line)
	for _, b := range bulletMarkers {
		if strings.HasPrefix(line, b) {
			return true
		}
	}
	return false
}
