package parser

import "context"

// TextExtractor 把一种格式的文档字节转换为纯文本
type TextExtractor interface {
	// Name 提取策略名，写入元数据
	Name() string
	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}
