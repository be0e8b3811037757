package parser

import (
	"context"
	"unicode/utf8"
)

// PlainTextExtractor TXT文档直接按UTF-8读取
type PlainTextExtractor struct{}

var _ TextExtractor = PlainTextExtractor{}

// Name 实现TextExtractor
func (PlainTextExtractor) Name() string { return "plaintext" }

// ExtractTextFromBytes 非法UTF-8视为损坏文档
func (PlainTextExtractor) ExtractTextFromBytes(_ context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	if !utf8.Valid(data) {
		return "", nil, errInvalidUTF8
	}
	return string(data), map[string]interface{}{
		"source_file_path": uri,
		"text_length":      len(data),
	}, nil
}
