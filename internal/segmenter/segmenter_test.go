package segmenter

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWithoutHeaders(t *testing.T) {
	text := "Jane Doe\njane@example.com\n\n  Some line  \nlast"
	m := Split(text)

	require.Equal(t, 1, m.Len(), "没有标题时只应有HEADER章节")
	header, ok := m.Get(HeaderSection)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe\njane@example.com\nSome line\nlast\n", header, "应保留行顺序并丢弃空行")
}

func TestSplitOrderedSections(t *testing.T) {
	text := `John Smith
Seattle, WA
Technical Skills:
Languages: Go, Python
EDUCATION
MIT 2016-2020
Bachelor of Science in Computer Science
experience
Software Engineer 2020 - Present
Acme Corp`

	m := Split(text)
	assert.Equal(t, []string{"HEADER", "TECHNICAL SKILLS:", "EDUCATION", "EXPERIENCE"}, m.Keys(), "章节应按文档顺序排列，键为大写原文")

	skills, ok := m.Find("SKILL")
	require.True(t, ok)
	assert.Equal(t, "Languages: Go, Python\n", skills)

	edu, ok := m.Find("EDUCATION", "ACADEMIC", "QUALIFICATION")
	require.True(t, ok)
	assert.Equal(t, "MIT 2016-2020\nBachelor of Science in Computer Science\n", edu)

	_, ok = m.Find("PROJECT")
	assert.False(t, ok, "不存在的章节应返回false")
}

func TestSplitEveryLineBelongsToOneSection(t *testing.T) {
	text := "Header line\nSKILLS\nGo\nPROJECTS\nA\nSKILLS\nRust\nPERSONAL PROJECTS\nB"
	m := Split(text)

	assert.Equal(t, []string{"HEADER", "SKILLS", "PROJECTS", "PERSONAL PROJECTS"}, m.Keys())
	skills, _ := m.Get("SKILLS")
	assert.Equal(t, "Go\nRust\n", skills, "重复标题的内容应追加而不是覆盖")
	assert.Equal(t, []string{"A\n", "B\n"}, m.FindAll("PROJECT"))

	assertEveryLineKept(t, text)
	assertEveryLineKept(t, "  \nSummary\n\nBuilt things\nEDUCATION:\nMIT\n\nSkills\nGo, Rust\nSUMMARY\nMore")
}

// assertEveryLineKept 输入中每个非标题非空行都恰好落在一个章节里
func assertEveryLineKept(t *testing.T, text string) {
	t.Helper()
	want := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !IsHeader(line) {
			want = append(want, line)
		}
	}

	got := []string{}
	for _, s := range Split(text).Sections() {
		got = append(got, strings.Split(strings.TrimSuffix(s.Text, "\n"), "\n")...)
	}
	got = slices.DeleteFunc(got, func(l string) bool { return l == "" })

	slices.Sort(want)
	slices.Sort(got)
	assert.Equal(t, want, got, "非标题非空行应全部保留且不重复")
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("  Work Experience:  "))
	assert.True(t, IsHeader("COMPETENCIES"))
	assert.False(t, IsHeader("Skills include Go"), "标题必须整行匹配")
	assert.False(t, IsHeader(""))
}
