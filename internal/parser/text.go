package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanText 统一换行符并做NFKC规范化，去掉控制字符和行尾空白，保留行顺序
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\f", "\n") // 分页符
	s = norm.NFKC.String(s)

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}

// meaningfulLength 去掉首尾空白后的字符数(按rune计)
func meaningfulLength(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}
