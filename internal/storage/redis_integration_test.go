package storage_test

import (
	"context"
	"os"
	"testing"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实Redis，设置 RM_TEST_REDIS_ADDR 后运行
func newTestRedis(t *testing.T) *storage.Redis {
	t.Helper()
	addr := os.Getenv("RM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 RM_TEST_REDIS_ADDR，跳过Redis集成测试")
	}
	r, err := storage.NewRedis(&config.RedisConfig{Address: addr, DB: 15, MD5RecordExpireDays: 1}, logger.Nop())
	if err != nil {
		t.Skipf("Redis不可用: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_CheckAndSetFileMD5(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	md5 := uuid.Must(uuid.NewV4()).String()
	t.Cleanup(func() { r.RemoveFileMD5(ctx, md5) })

	exists, _, err := r.CheckAndSetFileMD5(ctx, md5, "resume-1")
	require.NoError(t, err)
	assert.False(t, exists, "首次登记不应被判定为重复")

	exists, existingID, err := r.CheckAndSetFileMD5(ctx, md5, "resume-2")
	require.NoError(t, err)
	assert.True(t, exists, "再次登记应判定为重复")
	assert.Equal(t, "resume-1", existingID, "应返回先登记的简历ID")

	require.NoError(t, r.RemoveFileMD5(ctx, md5))
	exists, _, err = r.CheckAndSetFileMD5(ctx, md5, "resume-3")
	require.NoError(t, err)
	assert.False(t, exists, "移除后可重新登记")
}

func TestRedis_JobDescriptionCache(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	text := "jd-" + uuid.Must(uuid.NewV4()).String()

	_, ok, err := r.GetCachedJobDescription(ctx, text)
	require.NoError(t, err)
	assert.False(t, ok, "未写入时不应命中")

	jd := types.JobDescriptionRecord{Title: "Data Engineer"}
	require.NoError(t, r.CacheJobDescription(ctx, text, jd))
	got, ok, err := r.GetCachedJobDescription(ctx, text)
	require.NoError(t, err)
	assert.True(t, ok, "写入后应命中")
	assert.Equal(t, "Data Engineer", got.Title)
}

func TestRedis_VectorCache(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	key := "rm:test:vector:" + uuid.Must(uuid.NewV4()).String()

	require.NoError(t, r.SetVector(ctx, key, []float64{0.1, 0.2}, 0))
	vec, ok, err := r.GetVector(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2}, vec)
	r.Client.Del(ctx, key)
}
