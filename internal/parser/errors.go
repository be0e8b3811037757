package parser

import (
	"errors"
	"fmt"

	"resume-matcher/internal/types"
)

// 文本获取阶段的基础错误类型
var (
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	ErrExtractionFailure = errors.New("文档文本提取失败")
	// ErrEmptyText 提取结果为空，属于提取失败
	ErrEmptyText = fmt.Errorf("%w: 提取结果为空", ErrExtractionFailure)

	errInvalidUTF8 = errors.New("文本不是合法的UTF-8编码")
	errNoExtractor = errors.New("未配置该格式的提取器")
)

// DocumentError 包含详细上下文的文档处理错误
type DocumentError struct {
	Source  string             // 文件名或URI
	Kind    types.DocumentKind // 声明的文件类型
	Op      string             // 出错的操作
	BaseErr error              // 基础错误类型
	Cause   error              // 底层原因，可为nil
	Detail  string
}

func (e *DocumentError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s, 类型:%s, 来源:%s)", e.BaseErr, e.Op, e.Kind, e.Source)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 同时暴露基础错误和底层原因
func (e *DocumentError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewUnsupportedFormatError 未知扩展名或类型
func NewUnsupportedFormatError(source string, kind types.DocumentKind) error {
	return &DocumentError{
		Source:  source,
		Kind:    kind,
		Op:      "detect",
		BaseErr: ErrUnsupportedFormat,
	}
}

// NewExtractionError 文档损坏、不可读或提取器不可用
func NewExtractionError(source string, kind types.DocumentKind, cause error, detail string) error {
	return &DocumentError{
		Source:  source,
		Kind:    kind,
		Op:      "extract",
		BaseErr: ErrExtractionFailure,
		Cause:   cause,
		Detail:  detail,
	}
}

// NewEmptyTextError 经过备用策略后仍未得到文本
func NewEmptyTextError(source string, kind types.DocumentKind) error {
	return &DocumentError{
		Source:  source,
		Kind:    kind,
		Op:      "extract",
		BaseErr: ErrEmptyText,
	}
}
