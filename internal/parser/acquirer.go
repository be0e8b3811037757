package parser

import (
	"context"
	"os"
	"path/filepath"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// DefaultMinTextLength PDF主策略结果少于该字符数时改用备用策略
const DefaultMinTextLength = 100

// Acquirer 文本获取：按声明类型选择提取器，PDF结果过短时尝试备用策略
type Acquirer struct {
	pdfPrimary    TextExtractor
	pdfFallback   TextExtractor
	doc           TextExtractor
	docx          TextExtractor
	txt           TextExtractor
	minTextLength int
	logger        *zerolog.Logger
}

// AcquirerOption 文本获取器选项
type AcquirerOption func(*Acquirer)

// WithPDFExtractors 设置PDF主策略和备用策略，fallback可为nil
func WithPDFExtractors(primary, fallback TextExtractor) AcquirerOption {
	return func(a *Acquirer) {
		a.pdfPrimary = primary
		a.pdfFallback = fallback
	}
}

// WithDOCExtractor 设置DOC提取器
func WithDOCExtractor(e TextExtractor) AcquirerOption {
	return func(a *Acquirer) {
		a.doc = e
	}
}

// WithDOCXExtractor 替换默认的DOCX提取器
func WithDOCXExtractor(e TextExtractor) AcquirerOption {
	return func(a *Acquirer) {
		a.docx = e
	}
}

// WithMinTextLength 设置触发备用策略的最小文本长度
func WithMinTextLength(n int) AcquirerOption {
	return func(a *Acquirer) {
		if n > 0 {
			a.minTextLength = n
		}
	}
}

// WithAcquirerLogger 配置日志记录器
func WithAcquirerLogger(l *zerolog.Logger) AcquirerOption {
	return func(a *Acquirer) {
		a.logger = l
	}
}

// NewAcquirer 创建文本获取器，DOCX和TXT默认可用，PDF和DOC需要通过选项注入
func NewAcquirer(options ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		docx:          NewDocxExtractor(),
		txt:           PlainTextExtractor{},
		minTextLength: DefaultMinTextLength,
		logger:        logger.Nop(),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Acquire 把原始文档转换为清洗后的纯文本
func (a *Acquirer) Acquire(ctx context.Context, doc types.RawDocument) (string, map[string]interface{}, error) {
	kind, err := ParseKind(string(doc.Kind))
	if err != nil {
		return "", nil, NewUnsupportedFormatError(sourceName(doc), doc.Kind)
	}
	source := sourceName(doc)

	var (
		text string
		meta map[string]interface{}
	)
	switch kind {
	case types.KindPDF:
		text, meta, err = a.acquirePDF(ctx, doc.Data, source)
	case types.KindDOC:
		text, meta, err = a.runSingle(ctx, a.doc, kind, doc.Data, source)
	case types.KindDOCX:
		text, meta, err = a.runSingle(ctx, a.docx, kind, doc.Data, source)
	case types.KindTXT:
		text, meta, err = a.runSingle(ctx, a.txt, kind, doc.Data, source)
	}
	if err != nil {
		return "", meta, err
	}

	text = CleanText(text)
	if meaningfulLength(text) == 0 {
		return "", meta, NewEmptyTextError(source, kind)
	}
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["file_type"] = string(kind)
	return text, meta, nil
}

// AcquireFile 读取本地文件，类型由扩展名决定
func (a *Acquirer) AcquireFile(ctx context.Context, path string) (string, map[string]interface{}, error) {
	kind, err := KindFromFileName(path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, NewExtractionError(path, kind, err, "读取文件失败")
	}
	return a.Acquire(ctx, types.RawDocument{Data: data, Kind: kind, FileName: filepath.Base(path)})
}

func (a *Acquirer) acquirePDF(ctx context.Context, data []byte, source string) (string, map[string]interface{}, error) {
	if a.pdfPrimary == nil {
		return "", nil, NewExtractionError(source, types.KindPDF, errNoExtractor, "PDF")
	}

	text, meta, primaryErr := a.pdfPrimary.ExtractTextFromBytes(ctx, data, source)
	if primaryErr == nil && meaningfulLength(text) >= a.minTextLength {
		return text, withStrategy(meta, a.pdfPrimary.Name()), nil
	}

	if a.pdfFallback == nil {
		if primaryErr != nil {
			return "", meta, NewExtractionError(source, types.KindPDF, primaryErr, a.pdfPrimary.Name())
		}
		return text, withStrategy(meta, a.pdfPrimary.Name()), nil
	}

	a.logger.Info().
		Str("source", source).
		Int("primary_chars", meaningfulLength(text)).
		AnErr("primary_err", primaryErr).
		Str("fallback", a.pdfFallback.Name()).
		Msg("PDF主策略结果过短或失败，尝试备用策略")

	fbText, fbMeta, fbErr := a.pdfFallback.ExtractTextFromBytes(ctx, data, source)
	if fbErr == nil && (primaryErr != nil || meaningfulLength(fbText) >= meaningfulLength(text)) {
		return fbText, withStrategy(fbMeta, a.pdfFallback.Name()), nil
	}

	if primaryErr != nil {
		a.logger.Warn().Err(fbErr).Str("source", source).Msg("PDF备用策略失败")
		return "", meta, NewExtractionError(source, types.KindPDF, primaryErr, "备用策略也失败: "+fbErr.Error())
	}
	// 主策略结果虽短但优于备用策略
	return text, withStrategy(meta, a.pdfPrimary.Name()), nil
}

func (a *Acquirer) runSingle(ctx context.Context, e TextExtractor, kind types.DocumentKind, data []byte, source string) (string, map[string]interface{}, error) {
	if e == nil {
		return "", nil, NewExtractionError(source, kind, errNoExtractor, string(kind))
	}
	text, meta, err := e.ExtractTextFromBytes(ctx, data, source)
	if err != nil {
		return "", meta, NewExtractionError(source, kind, err, e.Name())
	}
	return text, withStrategy(meta, e.Name()), nil
}

func withStrategy(meta map[string]interface{}, name string) map[string]interface{} {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["strategy"] = name
	return meta
}

func sourceName(doc types.RawDocument) string {
	if doc.FileName != "" {
		return doc.FileName
	}
	return "resume." + string(doc.Kind)
}
