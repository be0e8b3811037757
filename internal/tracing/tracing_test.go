package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-matcher/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), config.TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()), "未启用时关闭函数应为空操作")
}

func TestInitProviderRequiresEndpoint(t *testing.T) {
	_, err := InitProvider(context.Background(), config.TracingConfig{Enabled: true}, nil)
	assert.Error(t, err)
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, errors.New("boom"), ErrorTypeDB)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1, "应记录一个异常事件")

	var errType string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "error.type" {
			errType = kv.Value.AsString()
		}
	}
	assert.Equal(t, "db", errType)
}

func TestRecordErrorNilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { RecordError(nil, errors.New("x"), ErrorTypeInternal) })
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	long := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	got := Truncate(long, 11)
	assert.Equal(t, "aaaa...bbbb", got)
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
