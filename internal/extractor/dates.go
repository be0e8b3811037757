package extractor

import (
	"regexp"
	"strings"
)

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec`

var (
	// dateRangePatterns 日期区间规则，按顺序取第一个命中
	dateRangePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:(?:` + monthNames + `)\.?\s*)?\d{4}\s*(?:-|–|—|\bto\b)\s*(?:(?:` + monthNames + `)\.?\s*)?\d{4}`),
		regexp.MustCompile(`(?i)(?:(?:` + monthNames + `)\.?\s*)?\d{4}\s*(?:-|–|—|\bto\b)\s*(?:Present|Current|Now)\b`),
		regexp.MustCompile(`(?:(?:` + monthNames + `)\.?\s*)?\d{4}`),
	}

	rangeSeparator = regexp.MustCompile(`\s*(?:-|–|—|\bto\b)\s*`)

	// yearToken 工作经历中的年份标记，可带月份
	yearToken = regexp.MustCompile(`(?:\b(?:` + monthNames + `)\.?\s+)?\b(?:19|20)\d{2}\b`)

	presentPattern = regexp.MustCompile(`(?i)\b(?:present|current|now)\b`)
)

// findDateRange 在一行中找到第一个日期或日期区间
// 返回匹配原文以及拆分后的起止日期，单个日期作为结束日期
func findDateRange(line string) (match, start, end string, ok bool) {
	for _, re := range dateRangePatterns {
		m := re.FindString(line)
		if m == "" {
			continue
		}
		parts := rangeSeparator.Split(strings.TrimSpace(m), 2)
		if len(parts) > 1 {
			return m, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
		}
		return m, "", strings.TrimSpace(parts[0]), true
	}
	return "", "", "", false
}
