package constants

import "time"

const (
	// DefaultExtractorVersion 写入事件和存储记录的提取器版本
	DefaultExtractorVersion = "heuristic-1.0"

	// JDCacheDuration JD解析缓存默认时长
	JDCacheDuration = 24 * time.Hour

	// 事件类型
	EventResumeExtracted = "resume.extracted"
	EventMatchCompleted  = "match.completed"

	// 对象存储路径格式
	ObjectOriginalFormat = "resume/%s/original%s" // 简历ID, 扩展名
	ObjectTextFormat     = "resume/%s/text.txt"   // 简历ID
)
