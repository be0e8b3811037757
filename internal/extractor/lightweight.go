package extractor

import (
	"strings"

	"resume-matcher/internal/matcher"
	"resume-matcher/internal/types"
)

// ParseLightweight 纯文本简历的轻量解析
// 只填充姓名、邮箱、电话和词表技能，其他字段为空
func ParseLightweight(text string) types.ResumeRecord {
	lines := nonEmptyLines(text)
	var contact types.ContactInfo

	if len(lines) > 0 {
		contact.Name = lines[0]
	}
	for _, line := range lines {
		at := strings.Index(line, "@")
		if at < 0 || !strings.Contains(line[at+1:], ".") {
			continue
		}
		if m := emailPattern.FindString(line); m != "" {
			contact.Email = m
		} else {
			contact.Email = line
		}
		break
	}
	for _, line := range lines {
		if countDigits(line) >= minPhoneDigits {
			contact.Phone = line
			break
		}
	}

	keywords := ExtractKeywords(text)
	skills := make([]types.SkillEntry, 0, len(keywords))
	for _, k := range keywords {
		skills = append(skills, types.SkillEntry{Name: k, Category: matcher.Categorize(k)})
	}

	return types.ResumeRecord{
		ContactInfo:    contact,
		Skills:         skills,
		Education:      []types.EducationEntry{},
		Experience:     []types.ExperienceEntry{},
		Projects:       []types.ProjectEntry{},
		Certifications: []string{},
		Languages:      []types.LanguageEntry{},
		RawText:        text,
		Tags:           []types.Tag{},
	}
}
