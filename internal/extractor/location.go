package extractor

import (
	"regexp"
	"strings"
)

// LocationFinder 从文本开头识别地名
type LocationFinder interface {
	FindLocation(text string) string
}

// locationWindow 只在文档开头这些字符内查找地点
const locationWindow = 1000

var usStateCodes = map[string]struct{}{}

func init() {
	for _, code := range strings.Fields(`AL AK AZ AR CA CO CT DE FL GA HI ID IL IN IA KS KY LA ME MD MA MI MN MS MO MT NE NV NH NJ NM NY NC ND OH OK OR PA RI SC SD TN TX UT VT VA WA WV WI WY DC`) {
		usStateCodes[code] = struct{}{}
	}
}

// cityStatePattern 形如 "Seattle, WA" 的城市加州缩写
var cityStatePattern = regexp.MustCompile(`\b([A-Z][a-zA-Z.]+(?: [A-Z][a-zA-Z.]+){0,2}), ([A-Z]{2})\b`)

// defaultPlaces 常见国家、州和城市名，按长度优先匹配
var defaultPlaces = []string{
	"United States", "United Kingdom", "New York", "San Francisco", "Los Angeles", "San Jose",
	"San Diego", "Salt Lake City", "New Jersey", "North Carolina", "South Carolina", "Hong Kong",
	"New Delhi", "Tel Aviv", "Washington", "California", "Texas", "Florida", "Massachusetts",
	"Illinois", "Colorado", "Georgia", "Virginia", "Oregon", "Seattle", "Boston", "Chicago",
	"Austin", "Denver", "Atlanta", "Dallas", "Houston", "Portland", "Toronto", "Vancouver",
	"Montreal", "London", "Berlin", "Munich", "Paris", "Amsterdam", "Dublin", "Zurich",
	"Singapore", "Tokyo", "Sydney", "Melbourne", "Bangalore", "Bengaluru", "Mumbai", "Hyderabad",
	"Beijing", "Shanghai", "Shenzhen", "Canada", "Germany", "France", "India", "China", "Japan",
	"Australia", "Ireland", "Netherlands", "Spain", "Italy", "Brazil", "Mexico", "Israel", "USA", "UK",
}

// Gazetteer 基于地名词典的地点识别
type Gazetteer struct {
	places []*regexp.Regexp
	names  []string
}

// NewGazetteer 用给定地名构建词典，空列表使用默认地名
func NewGazetteer(places []string) *Gazetteer {
	if len(places) == 0 {
		places = defaultPlaces
	}
	g := &Gazetteer{}
	for _, p := range places {
		g.names = append(g.names, p)
		g.places = append(g.places, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return g
}

// FindLocation 返回开头窗口内最早出现的地点
// "城市, 州缩写" 形式优先于词典匹配
func (g *Gazetteer) FindLocation(text string) string {
	window := leadingRunes(text, locationWindow)

	for _, m := range cityStatePattern.FindAllStringSubmatchIndex(window, -1) {
		state := window[m[4]:m[5]]
		if _, ok := usStateCodes[state]; ok {
			return window[m[0]:m[1]]
		}
	}

	best, bestPos := "", -1
	for i, re := range g.places {
		loc := re.FindStringIndex(window)
		if loc == nil {
			continue
		}
		if bestPos < 0 || loc[0] < bestPos {
			best, bestPos = g.names[i], loc[0]
		}
	}
	return best
}

func leadingRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
