package matcher

import (
	"context"
	"math"

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
)

// Embedder 语义相似度回退使用的向量化能力，实现需要支持并发只读调用
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// EinoEmbedder 把任意 eino Embedder 适配为 Embedder
type EinoEmbedder struct {
	inner einoEmbedding.Embedder
	opts  []einoEmbedding.Option
}

// NewEinoEmbedder 创建适配器，opts 会透传给每次 EmbedStrings 调用
func NewEinoEmbedder(inner einoEmbedding.Embedder, opts ...einoEmbedding.Option) *EinoEmbedder {
	return &EinoEmbedder{inner: inner, opts: opts}
}

// Encode 实现 Embedder
func (e *EinoEmbedder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	return e.inner.EmbedStrings(ctx, texts, e.opts...)
}

// Cosine 余弦相似度，任一向量为零向量或维度不同返回0
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
