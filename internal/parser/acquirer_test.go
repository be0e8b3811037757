package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor 返回固定结果并记录调用次数
type fakeExtractor struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) ExtractTextFromBytes(_ context.Context, _ []byte, _ string) (string, map[string]interface{}, error) {
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, map[string]interface{}{"from": f.name}, nil
}

func longText() string {
	return strings.Repeat("Experienced backend engineer. ", 10)
}

func TestAcquireUnsupportedFormat(t *testing.T) {
	a := NewAcquirer()
	_, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("x"), Kind: "odt"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "未知类型应返回UnsupportedFormat")
	assert.False(t, errors.Is(err, ErrExtractionFailure))
}

func TestAcquirePDFPrimaryLongEnough(t *testing.T) {
	primary := &fakeExtractor{name: "primary", text: longText()}
	fallback := &fakeExtractor{name: "fallback", text: "unused"}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	text, meta, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF})
	require.NoError(t, err)
	assert.Contains(t, text, "backend engineer")
	assert.Equal(t, "primary", meta["strategy"])
	assert.Equal(t, 0, fallback.calls, "主策略结果足够长时不应调用备用策略")
}

func TestAcquirePDFShortTextUsesFallback(t *testing.T) {
	primary := &fakeExtractor{name: "primary", text: "short"}
	fallback := &fakeExtractor{name: "fallback", text: longText()}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	text, meta, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls, "主策略结果少于100字符时应调用备用策略")
	assert.Equal(t, "fallback", meta["strategy"])
	assert.Contains(t, text, "Experienced")
}

func TestAcquirePDFPrimaryErrorUsesFallback(t *testing.T) {
	primary := &fakeExtractor{name: "primary", err: errors.New("corrupt xref")}
	fallback := &fakeExtractor{name: "fallback", text: "John Doe\nSKILLS"}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	text, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF})
	require.NoError(t, err)
	assert.Equal(t, "John Doe\nSKILLS", text)
}

func TestAcquirePDFBothFail(t *testing.T) {
	primary := &fakeExtractor{name: "primary", err: errors.New("bad")}
	fallback := &fakeExtractor{name: "fallback", err: errors.New("also bad")}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	_, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailure), "两种策略都失败时应返回ExtractionFailure")
}

func TestAcquireEmptyTextIsExtractionFailure(t *testing.T) {
	primary := &fakeExtractor{name: "primary", text: "   \n  "}
	fallback := &fakeExtractor{name: "fallback", text: ""}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	_, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyText))
	assert.True(t, errors.Is(err, ErrExtractionFailure), "空文本属于ExtractionFailure")
}

func TestAcquireShortPrimaryKeptWhenFallbackFails(t *testing.T) {
	primary := &fakeExtractor{name: "primary", text: "Jane Roe"}
	fallback := &fakeExtractor{name: "fallback", err: errors.New("tika down")}
	a := NewAcquirer(WithPDFExtractors(primary, fallback))

	text, meta, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("%PDF"), Kind: types.KindPDF})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", text)
	assert.Equal(t, "primary", meta["strategy"])
}

func TestAcquireDOCWithoutExtractor(t *testing.T) {
	a := NewAcquirer()
	_, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte("x"), Kind: types.KindDOC})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailure))
}

func TestAcquireTXT(t *testing.T) {
	a := NewAcquirer()
	text, meta, err := a.Acquire(context.Background(), types.RawDocument{
		Data: []byte("Jane Roe\r\nSKILLS\r\nLanguages: Go  \r\n"),
		Kind: types.KindTXT,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\nSKILLS\nLanguages: Go\n", text, "应统一换行并去掉行尾空白")
	assert.Equal(t, "plaintext", meta["strategy"])
	assert.Equal(t, "txt", meta["file_type"])
}

func TestAcquireTXTInvalidUTF8(t *testing.T) {
	a := NewAcquirer()
	_, _, err := a.Acquire(context.Background(), types.RawDocument{Data: []byte{0xff, 0xfe, 0xfd}, Kind: types.KindTXT})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailure))
}

func TestAcquireFileUnknownExtension(t *testing.T) {
	a := NewAcquirer()
	_, _, err := a.AcquireFile(context.Background(), "/tmp/resume.rtf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
