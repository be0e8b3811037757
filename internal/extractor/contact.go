package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"

	"github.com/nyaruka/phonenumbers"
)

var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern    = regexp.MustCompile(`(?:\+\d{1,3}[-. \t]?)?(?:\(?\d{3}\)?[-. \t]?)?\d{3}[-. \t]?\d{4}`)
	linkedinPattern = regexp.MustCompile(`(?i)(?:linkedin\.com/in/|linkedin\.com/profile/view\?id=)([A-Za-z0-9_-]+)`)
	githubPattern   = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9_-]+)`)
	urlPattern      = regexp.MustCompile(`https?://(?:www\.)?[A-Za-z0-9.-]+\.[A-Za-z]{2,}(?:/\S*)?`)
)

// minPhoneDigits 电话号码至少包含的数字个数
const minPhoneDigits = 10

// ContactExtractor 联系方式提取
type ContactExtractor struct {
	locations     LocationFinder
	defaultRegion string
}

// NewContactExtractor 创建联系方式提取器
// locations 为nil时使用实体识别，识别不到再查默认地名词典
func NewContactExtractor(locations LocationFinder) *ContactExtractor {
	if locations == nil {
		locations = NewNERLocationFinder(nil, nil)
	}
	return &ContactExtractor{locations: locations, defaultRegion: "US"}
}

// Extract 姓名取自HEADER章节，其余字段在全文中查找第一个匹配
func (c *ContactExtractor) Extract(sections *segmenter.SectionMap, text string) types.ContactInfo {
	var info types.ContactInfo

	if header, ok := sections.Get(segmenter.HeaderSection); ok {
		info.Name = firstMultiWordLine(header)
	}
	if m := emailPattern.FindString(text); m != "" {
		info.Email = m
	}
	info.Phone = c.findPhone(text)
	info.Location = c.locations.FindLocation(text)

	if m := linkedinPattern.FindStringSubmatch(text); m != nil {
		info.LinkedIn = "linkedin.com/in/" + m[1]
	}
	if m := githubPattern.FindStringSubmatch(text); m != nil {
		info.GitHub = "github.com/" + m[1]
	}
	for _, u := range urlPattern.FindAllString(text, -1) {
		lower := strings.ToLower(u)
		if strings.Contains(lower, "linkedin") || strings.Contains(lower, "github") {
			continue
		}
		info.Portfolio = strings.TrimRight(u, ".,;)")
		break
	}
	return info
}

// findPhone 返回第一个至少10位数字且能被libphonenumber识别为可能号码的候选
func (c *ContactExtractor) findPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		candidate = strings.TrimSpace(candidate)
		if countDigits(candidate) < minPhoneDigits {
			continue
		}
		if !c.possibleNumber(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func (c *ContactExtractor) possibleNumber(candidate string) bool {
	num, err := phonenumbers.Parse(candidate, c.defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

func firstMultiWordLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		if len(strings.Fields(line)) > 1 {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
