// Package segmenter 按章节标题把简历纯文本切分为有序的章节映射
package segmenter

import (
	"regexp"
	"strings"
)

// HeaderSection 第一个可识别标题之前的默认章节
const HeaderSection = "HEADER"

// sectionHeaders 可识别的章节标题同义词，整行匹配且忽略大小写
var sectionHeaders = []string{
	"CONTACT", "PERSONAL INFO", "PROFILE", "SUMMARY", "OBJECTIVE",
	"EDUCATION", "ACADEMIC", "QUALIFICATION",
	"EXPERIENCE", "WORK EXPERIENCE", "EMPLOYMENT", "PROFESSIONAL EXPERIENCE",
	"SKILLS", "TECHNICAL SKILLS", "EXPERTISE", "COMPETENCIES",
	"PROJECTS", "PERSONAL PROJECTS", "ACADEMIC PROJECTS",
	"CERTIFICATIONS", "CERTIFICATES", "AWARDS", "ACHIEVEMENTS",
	"LANGUAGES", "INTERESTS", "HOBBIES", "ACTIVITIES",
	"PUBLICATIONS", "REFERENCES",
}

var headerPattern = regexp.MustCompile(`(?i)^(?:` + strings.Join(sectionHeaders, "|") + `)[:\s]*$`)

// Section 单个章节，Key 为文档中出现的标题原文(去空白后转大写)
type Section struct {
	Key  string
	Text string
}

// SectionMap 章节映射，保持文档中的出现顺序
type SectionMap struct {
	sections []Section
	index    map[string]int
}

// Split 将纯文本按行扫描并切分为章节
// 标题行开启新章节，其后的非空行(去掉首尾空白)加换行符追加到当前章节
// 同一标题重复出现时内容追加到已有章节，保证每一行都只属于一个章节
func Split(text string) *SectionMap {
	m := &SectionMap{index: make(map[string]int)}
	current := m.open(HeaderSection)

	var b strings.Builder
	flush := func() {
		m.sections[current].Text += b.String()
		b.Reset()
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" && headerPattern.MatchString(line) {
			flush()
			current = m.open(strings.ToUpper(line))
			continue
		}
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	flush()
	return m
}

func (m *SectionMap) open(key string) int {
	if i, ok := m.index[key]; ok {
		return i
	}
	m.sections = append(m.sections, Section{Key: key})
	m.index[key] = len(m.sections) - 1
	return len(m.sections) - 1
}

// IsHeader 判断一行是否为可识别的章节标题
func IsHeader(line string) bool {
	return headerPattern.MatchString(strings.TrimSpace(line))
}

// Len 章节数量(包含HEADER)
func (m *SectionMap) Len() int {
	return len(m.sections)
}

// Keys 按文档顺序返回所有章节标题
func (m *SectionMap) Keys() []string {
	keys := make([]string, len(m.sections))
	for i, s := range m.sections {
		keys[i] = s.Key
	}
	return keys
}

// Sections 返回章节副本
func (m *SectionMap) Sections() []Section {
	out := make([]Section, len(m.sections))
	copy(out, m.sections)
	return out
}

// Get 按标题精确获取章节内容
func (m *SectionMap) Get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.sections[i].Text, true
}

// Find 返回第一个标题包含任一关键词的章节内容
func (m *SectionMap) Find(keywords ...string) (string, bool) {
	for _, s := range m.sections {
		if keyContainsAny(s.Key, keywords) {
			return s.Text, true
		}
	}
	return "", false
}

// FindAll 返回所有标题包含任一关键词的章节内容，按文档顺序
func (m *SectionMap) FindAll(keywords ...string) []string {
	var out []string
	for _, s := range m.sections {
		if keyContainsAny(s.Key, keywords) {
			out = append(out, s.Text)
		}
	}
	return out
}

func keyContainsAny(key string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}
