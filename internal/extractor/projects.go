package extractor

import (
	"regexp"
	"strings"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"
)

var projectURLPattern = regexp.MustCompile(`(?:github\.com|gitlab\.com|bitbucket\.org|herokuapp\.com|netlify\.app)/[\w.-]+/[\w.-]+`)

// ExtractProjects 合并所有标题含 PROJECT 的章节后解析
func ExtractProjects(sections *segmenter.SectionMap) []types.ProjectEntry {
	blocks := sections.FindAll("PROJECT")
	if len(blocks) == 0 {
		return []types.ProjectEntry{}
	}
	return ParseProjects(strings.Join(blocks, "\n"))
}

// ParseProjects 非项目符号开头的行开启新项目，项目符号行作为描述
func ParseProjects(text string) []types.ProjectEntry {
	var groups [][]string
	for _, line := range nonEmptyLines(text) {
		if !hasBullet(line) || len(groups) == 0 {
			groups = append(groups, []string{line})
			continue
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], line)
	}

	projects := []types.ProjectEntry{}
	for _, g := range groups {
		projects = append(projects, parseProjectGroup(g))
	}
	return projects
}

func parseProjectGroup(lines []string) types.ProjectEntry {
	full := strings.Join(lines, "\n")
	p := types.ProjectEntry{Technologies: []string{}}

	title := stripBullet(lines[0])
	if m, start, end, ok := findDateRange(title); ok {
		title = cleanPosition(strings.Replace(title, m, "", 1))
		p.StartDate, p.EndDate = start, end
	}
	p.Name = title

	if len(lines) > 1 {
		desc := make([]string, 0, len(lines)-1)
		for _, l := range lines[1:] {
			desc = append(desc, stripBullet(l))
		}
		p.Description = strings.Join(desc, "\n")
	}

	if techs := FindTechnologies(full); len(techs) > 0 {
		p.Technologies = techs
	}
	if u := projectURLPattern.FindString(full); u != "" {
		p.URL = u
	}
	return p
}
