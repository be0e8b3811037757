package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 创建一个模拟的Tika服务器，用于测试
func createMockTikaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/tika":
			if r.Header.Get("Accept") != "text/plain" {
				w.WriteHeader(http.StatusNotAcceptable)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("content-type=" + r.Header.Get("Content-Type") + "\nname=" + r.Header.Get("X-Tika-Resource-Name")))
		case "/meta":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Content-Type":"application/pdf","xmpTPg:NPages":"2","dc:title":"CV","X-TIKA:Parsed-By":"org.apache.tika.parser.DefaultParser"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewTikaExtractorDefaults(t *testing.T) {
	e := NewTikaExtractor("http://localhost:9998/")
	assert.Equal(t, "http://localhost:9998", e.ServerURL, "末尾的/应被去掉")
	assert.Equal(t, 60*time.Second, e.Client.Timeout, "HTTP客户端超时默认应为60秒")
	assert.Equal(t, MetadataNone, e.metadataMode)

	custom := NewTikaExtractor("http://x", WithTimeout(5*time.Second), WithMetadataMode(MetadataFull), WithMetadataMode("bogus"))
	assert.Equal(t, 5*time.Second, custom.Client.Timeout)
	assert.Equal(t, MetadataFull, custom.metadataMode, "非法模式应被忽略")
}

func TestTikaExtractText(t *testing.T) {
	server := createMockTikaServer(t)
	defer server.Close()

	e := NewTikaExtractor(server.URL)
	text, meta, err := e.ExtractTextFromBytes(context.Background(), []byte("%PDF-1.5"), "/uploads/cv.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "content-type=application/pdf")
	assert.Contains(t, text, "name=cv.pdf", "资源名只应包含文件名")
	assert.Contains(t, meta, "processing_duration_ms")
	assert.NotContains(t, meta, "dc:title", "none模式不应请求元数据")
}

func TestTikaExtractDOCContentType(t *testing.T) {
	server := createMockTikaServer(t)
	defer server.Close()

	e := NewTikaExtractor(server.URL, WithDefaultKind(types.KindDOC))
	text, _, err := e.ExtractTextFromBytes(context.Background(), []byte{0xd0, 0xcf}, "resume")
	require.NoError(t, err)
	assert.Contains(t, text, "application/msword", "无扩展名时使用默认类型")
}

func TestTikaMetadataModes(t *testing.T) {
	server := createMockTikaServer(t)
	defer server.Close()

	minimal := NewTikaExtractor(server.URL, WithMetadataMode(MetadataMinimal))
	_, meta, err := minimal.ExtractTextFromBytes(context.Background(), []byte("%PDF"), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "CV", meta["dc:title"])
	assert.NotContains(t, meta, "X-TIKA:Parsed-By", "精简模式只保留重要字段")

	full := NewTikaExtractor(server.URL, WithMetadataMode(MetadataFull))
	_, meta, err = full.ExtractTextFromBytes(context.Background(), []byte("%PDF"), "cv.pdf")
	require.NoError(t, err)
	assert.Contains(t, meta, "X-TIKA:Parsed-By")
}

func TestTikaServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	e := NewTikaExtractor(server.URL)
	_, _, err := e.ExtractTextFromBytes(context.Background(), []byte("bad"), "cv.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTikaAsAcquirerFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("JANE ROE\nEXPERIENCE\nSoftware Engineer 2019 - 2022\nAcme"))
	}))
	defer server.Close()

	primary := &fakeExtractor{name: "primary", text: ""}
	a := NewAcquirer(WithPDFExtractors(primary, NewTikaExtractor(server.URL)))
	text, meta, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF, FileName: "cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "tika", meta["strategy"])
	assert.Contains(t, text, "EXPERIENCE")
}
