package matcher

import (
	"math"
	"strconv"
	"strings"

	"resume-matcher/internal/types"
)

// SkillYears 统计描述中提到该技能的工作经历年限之和
// 每段经历取起止日期最后一个词作为年份，无法解析的跳过，负值按0计
// 合计为0时返回nil
func SkillYears(skill string, experience []types.ExperienceEntry) *float64 {
	needle := Normalize(skill)
	if needle == "" {
		return nil
	}

	total := 0.0
	for _, exp := range experience {
		if exp.Description == "" || !strings.Contains(Normalize(exp.Description), needle) {
			continue
		}
		start, ok := lastYear(exp.StartDate)
		if !ok {
			continue
		}
		end, ok := lastYear(exp.EndDate)
		if !ok {
			continue
		}
		if d := end - start; d > 0 {
			total += d
		}
	}

	if total <= 0 {
		return nil
	}
	rounded := math.Round(total*10) / 10
	return &rounded
}

func lastYear(date string) (float64, bool) {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
