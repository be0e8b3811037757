package parser

import (
	"path/filepath"
	"strings"

	"resume-matcher/internal/types"
)

var supportedKinds = map[types.DocumentKind]bool{
	types.KindPDF:  true,
	types.KindDOC:  true,
	types.KindDOCX: true,
	types.KindTXT:  true,
}

// ParseKind 把 "pdf"、".PDF"、"docx" 等声明转换为DocumentKind
func ParseKind(declared string) (types.DocumentKind, error) {
	k := types.DocumentKind(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(declared)), "."))
	if !supportedKinds[k] {
		return k, NewUnsupportedFormatError(declared, k)
	}
	return k, nil
}

// KindFromFileName 根据文件扩展名推断类型
func KindFromFileName(name string) (types.DocumentKind, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", NewUnsupportedFormatError(name, "")
	}
	k, err := ParseKind(ext)
	if err != nil {
		return k, NewUnsupportedFormatError(name, k)
	}
	return k, nil
}

// IsSupportedFileName 扩展名是否受支持
func IsSupportedFileName(name string) bool {
	_, err := KindFromFileName(name)
	return err == nil
}

// contentTypeFor 提交给Tika的Content-Type
func contentTypeFor(kind types.DocumentKind) string {
	switch kind {
	case types.KindPDF:
		return "application/pdf"
	case types.KindDOC:
		return "application/msword"
	case types.KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case types.KindTXT:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
