// Package matcher 技能名称归一化、相关技能判定以及经验年限统计
package matcher

import "strings"

// Normalize 归一化技能名: 转小写、去首尾空白、删除连字符和空格
// 对已归一化的结果再次调用保持不变
func Normalize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}
