package extractor

import (
	"regexp"
	"sort"
	"strings"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"
)

var educationSectionKeywords = []string{"EDUCATION", "ACADEMIC", "QUALIFICATION"}

// degreeFamilies 学位关键词，按学士/硕士/博士/其他的顺序尝试
var degreeFamilies = [][]string{
	{"Bachelor", "Bachelors", "Bachelor's", "BS", "BA", "B.S.", "B.A.", "B.E.", "B.Tech.", "B.Tech",
		"Bachelor of Science", "Bachelor of Arts", "Bachelor of Engineering", "Bachelor of Technology"},
	{"Master", "Masters", "Master's", "MS", "MA", "M.S.", "M.A.", "M.E.", "M.Tech.", "M.Tech", "MBA",
		"Master of Science", "Master of Arts", "Master of Engineering", "Master of Technology", "Master of Business Administration"},
	{"PhD", "Ph.D.", "Ph.D", "Doctor of Philosophy"},
	{"Diploma", "Certificate", "Associate"},
}

var (
	degreePatterns = compileDegreePatterns(degreeFamilies)
	fieldPattern   = regexp.MustCompile(`\bin\s+([A-Za-z][A-Za-z\s]*)`)
	gpaPattern     = regexp.MustCompile(`(?i)(?:GPA|Grade Point Average|G\.P\.A\.)[:\s]*([0-4]\.[0-9]+)(?:/[0-9]\.[0-9]+)?`)
	gpaWordPattern = regexp.MustCompile(`(?i)\s+(?:GPA|Grade Point Average|G\.P\.A)\b.*$`)
)

// compileDegreePatterns 每组内按长度降序，保证 "Bachelor of Science" 优先于 "Bachelor"
func compileDegreePatterns(families [][]string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(families))
	for _, family := range families {
		terms := append([]string(nil), family...)
		sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = regexp.QuoteMeta(t)
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])(`+strings.Join(quoted, "|")+`)(?:$|[^A-Za-z0-9'])`))
	}
	return patterns
}

// ExtractEducation 解析第一个教育章节
func ExtractEducation(sections *segmenter.SectionMap) []types.EducationEntry {
	text, ok := sections.Find(educationSectionKeywords...)
	if !ok {
		return []types.EducationEntry{}
	}
	return ParseEducation(text)
}

// ParseEducation 两行一组: 第一行为学校及日期，第二行为学位、专业和GPA
func ParseEducation(text string) []types.EducationEntry {
	lines := nonEmptyLines(text)
	entries := []types.EducationEntry{}

	for i := 0; i < len(lines); {
		var entry types.EducationEntry
		institution := lines[i]
		if m, start, end, ok := findDateRange(institution); ok {
			entry.Institution = strings.TrimSpace(strings.Replace(institution, m, "", 1))
			entry.Institution = strings.TrimRight(entry.Institution, " ,|-–")
			entry.StartDate, entry.EndDate = start, end
		} else {
			entry.Institution = institution
		}
		i++

		if i < len(lines) {
			parseDegreeLine(lines[i], &entry)
			i++
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseDegreeLine(line string, entry *types.EducationEntry) {
	for _, re := range degreePatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entry.Degree = m[1]
		if f := fieldPattern.FindStringSubmatch(line); f != nil {
			field := gpaWordPattern.ReplaceAllString(f[1], "")
			entry.FieldOfStudy = strings.TrimSpace(field)
		}
		break
	}
	if m := gpaPattern.FindStringSubmatch(line); m != nil {
		entry.GPA = m[1]
	}
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
