package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"resume-matcher/internal/logger"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// 元数据模式
const (
	MetadataNone    = "none"
	MetadataMinimal = "minimal"
	MetadataFull    = "full"
)

// TikaExtractor 基于Apache Tika服务器的文本提取器
// 用作PDF的备用策略，也是DOC格式的专用提取器
type TikaExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 元数据模式
	metadataMode string
	// 默认文档类型，uri没有扩展名时使用
	kind   types.DocumentKind
	logger *zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaExtractor)

// WithMetadataMode 配置元数据提取模式
func WithMetadataMode(mode string) TikaOption {
	return func(e *TikaExtractor) {
		switch mode {
		case MetadataFull, MetadataMinimal, MetadataNone:
			e.metadataMode = mode
		}
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(l *zerolog.Logger) TikaOption {
	return func(e *TikaExtractor) {
		e.logger = l
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaExtractor) {
		e.Client.Timeout = timeout
	}
}

// WithDefaultKind 配置uri无扩展名时提交给Tika的文档类型
func WithDefaultKind(kind types.DocumentKind) TikaOption {
	return func(e *TikaExtractor) {
		e.kind = kind
	}
}

var _ TextExtractor = (*TikaExtractor)(nil)

// NewTikaExtractor 创建一个新的Tika提取器
func NewTikaExtractor(serverURL string, options ...TikaOption) *TikaExtractor {
	extractor := &TikaExtractor{
		ServerURL:    strings.TrimRight(serverURL, "/"),
		Client:       &http.Client{Timeout: 60 * time.Second},
		metadataMode: MetadataNone,
		kind:         types.KindPDF,
		logger:       logger.Nop(),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// Name 实现TextExtractor
func (e *TikaExtractor) Name() string { return "tika" }

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	baseMetadata := map[string]interface{}{
		"extraction_time":  startTime.Format(time.RFC3339),
		"source_file_path": uri,
	}
	contentType := contentTypeFor(e.kindFor(uri))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", baseMetadata, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", filepath.Base(uri))
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", baseMetadata, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	text := string(textBytes)

	baseMetadata["text_length"] = len(text)
	baseMetadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.metadataMode == MetadataNone {
		return text, baseMetadata, nil
	}

	rawMetadata, err := e.extractMetadata(ctx, data, uri, contentType)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Msg("元数据提取失败，继续使用基本元数据")
		return text, baseMetadata, nil
	}
	for k, v := range rawMetadata {
		if e.metadataMode == MetadataFull || isImportantMetadata(k) {
			baseMetadata[k] = v
		}
	}
	return text, baseMetadata, nil
}

func (e *TikaExtractor) kindFor(uri string) types.DocumentKind {
	if k, err := KindFromFileName(uri); err == nil {
		return k
	}
	return e.kind
}

// 判断元数据字段是否重要
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"pdf:PDFVersion":    true,
		"xmpTPg:NPages":     true,
		"dcterms:created":   true,
		"language":          true,
		"dc:title":          true,
		"Content-Type":      true,
		"meta:page-count":   true,
		"meta:word-count":   true,
		"pdf:docinfo:title": true,
	}
	return importantKeys[key]
}

// extractMetadata 调用 /meta 获取文档元数据
func (e *TikaExtractor) extractMetadata(ctx context.Context, data []byte, uri, contentType string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/meta", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", filepath.Base(uri))
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	var metadata map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}
