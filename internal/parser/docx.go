package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/logger"

	"baliance.com/gooxml/document"
	"github.com/rs/zerolog"
)

// DocxExtractor 使用gooxml读取DOCX的段落和表格文本
type DocxExtractor struct {
	tempDir string // 为空时使用系统临时目录
	logger  *zerolog.Logger
}

// DocxOption DOCX提取器选项
type DocxOption func(*DocxExtractor)

// WithDocxTempDir 指定临时文件目录
func WithDocxTempDir(dir string) DocxOption {
	return func(e *DocxExtractor) {
		e.tempDir = dir
	}
}

// WithDocxLogger 配置日志记录器
func WithDocxLogger(l *zerolog.Logger) DocxOption {
	return func(e *DocxExtractor) {
		e.logger = l
	}
}

var _ TextExtractor = (*DocxExtractor)(nil)

// NewDocxExtractor 创建DOCX提取器
func NewDocxExtractor(options ...DocxOption) *DocxExtractor {
	e := &DocxExtractor{logger: logger.Nop()}
	for _, option := range options {
		option(e)
	}
	return e
}

// Name 实现TextExtractor
func (e *DocxExtractor) Name() string { return "gooxml-docx" }

// ExtractTextFromBytes 段落按文档顺序输出，随后输出表格中每个单元格的段落
func (e *DocxExtractor) ExtractTextFromBytes(_ context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	var (
		lines      []string
		paragraphs int
		tables     int
	)

	err := withTempFile(e.tempDir, "resume-*.docx", data, func(path string) error {
		doc, err := document.Open(path)
		if err != nil {
			return fmt.Errorf("打开DOCX失败: %w", err)
		}

		for _, p := range doc.Paragraphs() {
			lines = append(lines, paragraphText(p))
			paragraphs++
		}
		for _, t := range doc.Tables() {
			tables++
			for _, row := range t.Rows() {
				for _, cell := range row.Cells() {
					for _, p := range cell.Paragraphs() {
						lines = append(lines, paragraphText(p))
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Msg("DOCX提取失败")
		return "", nil, err
	}

	text := strings.Join(lines, "\n")
	metadata := map[string]interface{}{
		"source_file_path":       uri,
		"paragraph_count":        paragraphs,
		"table_count":            tables,
		"text_length":            len(text),
		"processing_duration_ms": time.Since(startTime).Milliseconds(),
	}
	return text, metadata, nil
}

func paragraphText(p document.Paragraph) string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}
