package extractor

import (
	"regexp"
	"strings"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"
)

// ExtractCertifications 第一个证书章节的每一行
func ExtractCertifications(sections *segmenter.SectionMap) []string {
	certs := []string{}
	text, ok := sections.Find("CERTIFICATION", "CERTIFICATE")
	if !ok {
		return certs
	}
	for _, line := range nonEmptyLines(text) {
		if l := stripBullet(line); l != "" {
			certs = append(certs, l)
		}
	}
	return certs
}

var (
	languageParen = regexp.MustCompile(`^(.+?)\s*\((.+)\)$`)
	languageDash  = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)
)

// ExtractLanguages 解析语言章节，支持 "English: Native"、"English - Native"、"English (Native)"
func ExtractLanguages(sections *segmenter.SectionMap) []types.LanguageEntry {
	text, ok := sections.Find("LANGUAGE")
	if !ok {
		return []types.LanguageEntry{}
	}
	return ParseLanguages(text)
}

// ParseLanguages 逗号分隔的多项会被拆开，只有语言名时熟练度为空
func ParseLanguages(text string) []types.LanguageEntry {
	langs := []types.LanguageEntry{}
	for _, line := range nonEmptyLines(text) {
		for _, item := range splitOutsideParens(stripBullet(line)) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			langs = append(langs, parseLanguageItem(item))
		}
	}
	return langs
}

func parseLanguageItem(item string) types.LanguageEntry {
	if name, level, ok := strings.Cut(item, ":"); ok {
		return types.LanguageEntry{Language: strings.TrimSpace(name), Proficiency: strings.TrimSpace(level)}
	}
	if m := languageParen.FindStringSubmatch(item); m != nil {
		return types.LanguageEntry{Language: strings.TrimSpace(m[1]), Proficiency: strings.TrimSpace(m[2])}
	}
	if m := languageDash.FindStringSubmatch(item); m != nil {
		return types.LanguageEntry{Language: strings.TrimSpace(m[1]), Proficiency: strings.TrimSpace(m[2])}
	}
	return types.LanguageEntry{Language: item}
}

func splitOutsideParens(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// ExtractSummary 第一个概述类章节合并为一行
func ExtractSummary(sections *segmenter.SectionMap) string {
	text, ok := sections.Find("SUMMARY", "PROFILE", "OBJECTIVE")
	if !ok {
		return ""
	}
	return strings.Join(nonEmptyLines(text), " ")
}
