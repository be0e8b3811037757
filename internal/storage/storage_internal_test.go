package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%python%", likePattern("  Python "), "应转小写并去除空白")
	assert.Equal(t, `%100\%\_a\\b%`, likePattern(`100%_a\b`), "通配符应转义")
}

func TestNormalizeTagNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, normalizeTagNames([]string{" a", "", "b", "a "}))
	assert.Empty(t, normalizeTagNames(nil))
}

func TestTextHash(t *testing.T) {
	assert.Equal(t, TextHash("abc"), TextHash("abc"), "相同文本哈希一致")
	assert.NotEqual(t, TextHash("abc"), TextHash("abd"))
	assert.Len(t, TextHash(""), 64, "应为SHA-256十六进制")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType(".pdf"))
	assert.Equal(t, "application/pdf", ContentType(".PDF"))
	assert.Equal(t, "application/octet-stream", ContentType(".bin"))
}
