package extractor

import (
	"regexp"
	"strings"

	"resume-matcher/internal/logger"

	"github.com/jdkato/prose/v2"
	"github.com/rs/zerolog"
)

// placeLabel prose 实体识别中地缘政治实体的标签
const placeLabel = "GPE"

// trailingState 实体后紧跟的 ", WA" 形式州缩写
var trailingState = regexp.MustCompile(`^,\s*([A-Z]{2})\b`)

// NERLocationFinder 用 prose 命名实体识别取开头窗口内第一个地名
// 识别不到时交给 fallback
type NERLocationFinder struct {
	fallback LocationFinder
	logger   *zerolog.Logger
}

// NewNERLocationFinder fallback 为nil时使用默认地名词典
func NewNERLocationFinder(fallback LocationFinder, l *zerolog.Logger) *NERLocationFinder {
	if fallback == nil {
		fallback = NewGazetteer(nil)
	}
	if l == nil {
		l = logger.Nop()
	}
	return &NERLocationFinder{fallback: fallback, logger: l}
}

// FindLocation 实现 LocationFinder
func (f *NERLocationFinder) FindLocation(text string) string {
	window := leadingRunes(text, locationWindow)
	if strings.TrimSpace(window) == "" {
		return ""
	}

	doc, err := prose.NewDocument(window, prose.WithSegmentation(false))
	if err != nil {
		f.logger.Debug().Err(err).Msg("实体识别失败，改用地名词典")
		return f.fallback.FindLocation(text)
	}
	if place := firstPlace(doc.Entities(), window); place != "" {
		return place
	}
	return f.fallback.FindLocation(text)
}

// firstPlace 返回第一个GPE实体，后面紧跟合法州缩写时一并带上
func firstPlace(entities []prose.Entity, window string) string {
	for _, ent := range entities {
		if ent.Label != placeLabel {
			continue
		}
		name := strings.TrimSpace(ent.Text)
		if name == "" {
			continue
		}
		pos := strings.Index(window, name)
		if pos < 0 {
			return name
		}
		rest := window[pos+len(name):]
		if m := trailingState.FindStringSubmatch(rest); m != nil {
			if _, ok := usStateCodes[m[1]]; ok {
				return name + ", " + m[1]
			}
		}
		return name
	}
	return ""
}
