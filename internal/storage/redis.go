package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/constants"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var redisTracer = otel.Tracer("resume-matcher/storage/redis")

// checkAndSetMD5Script 原子地检查MD5是否已登记，未登记时写入集合和映射
// 返回 {0, ""} 表示新登记，{1, 已有简历ID} 表示重复
var checkAndSetMD5Script = redis.NewScript(`
local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
if exists == 1 then
	local id = redis.call('GET', KEYS[2])
	if not id then id = '' end
	return {1, id}
end
redis.call('SADD', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[3])
redis.call('EXPIRE', KEYS[1], ARGV[3])
return {0, ''}
`)

// Redis 缓存和去重
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
	logger *zerolog.Logger
}

// NewRedis 创建Redis客户端并检查连通性
func NewRedis(cfg *config.RedisConfig, l *zerolog.Logger) (*Redis, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	l.Info().Str("address", cfg.Address).Int("db", cfg.DB).Msg("成功连接到Redis")
	return &Redis{Client: client, config: cfg, logger: l}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查连接
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) startSpan(ctx context.Context, name, operation, key string) (context.Context, trace.Span) {
	return redisTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemRedis,
			attribute.String("db.redis.database", strconv.Itoa(r.config.DB)),
			attribute.String("db.operation", operation),
			attribute.String("db.redis.key", tracing.Truncate(key, 100)),
		))
}

// md5ExpireDuration MD5去重记录的过期时间
func (r *Redis) md5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// CheckAndSetFileMD5 登记上传文件的MD5
// 已存在时返回 exists=true 和已登记的简历ID
func (r *Redis) CheckAndSetFileMD5(ctx context.Context, md5Hex, resumeID string) (exists bool, existingID string, err error) {
	ctx, span := r.startSpan(ctx, "Redis.CheckAndSetFileMD5", "EVAL", constants.KeyFileMD5Set)
	defer span.End()

	mapKey := fmt.Sprintf(constants.KeyFileMD5ToResumeID, md5Hex)
	ttl := int64(r.md5ExpireDuration().Seconds())
	res, err := checkAndSetMD5Script.Run(ctx, r.Client, []string{constants.KeyFileMD5Set, mapKey}, md5Hex, resumeID, ttl).Slice()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", fmt.Errorf("执行原子检查和添加操作失败: %w", err)
	}
	if len(res) != 2 {
		err := fmt.Errorf("意外的脚本返回值长度: %d", len(res))
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", err
	}

	flag, _ := res[0].(int64)
	existingID, _ = res[1].(string)
	exists = flag == 1
	span.SetAttributes(attribute.Bool("already_exists", exists))
	return exists, existingID, nil
}

// RemoveFileMD5 移除去重记录，提取失败回滚时使用
func (r *Redis) RemoveFileMD5(ctx context.Context, md5Hex string) error {
	ctx, span := r.startSpan(ctx, "Redis.RemoveFileMD5", "SREM", constants.KeyFileMD5Set)
	defer span.End()

	pipe := r.Client.TxPipeline()
	pipe.SRem(ctx, constants.KeyFileMD5Set, md5Hex)
	pipe.Del(ctx, fmt.Sprintf(constants.KeyFileMD5ToResumeID, md5Hex))
	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("从集合中移除MD5失败: %w", err)
	}
	return nil
}

// jdCacheTTL 岗位解析缓存时长
func (r *Redis) jdCacheTTL() time.Duration {
	if r.config.JDCacheTTLHours > 0 {
		return time.Duration(r.config.JDCacheTTLHours) * time.Hour
	}
	return constants.JDCacheDuration
}

// GetCachedJobDescription 按原文SHA-256读取已解析的岗位描述
func (r *Redis) GetCachedJobDescription(ctx context.Context, text string) (types.JobDescriptionRecord, bool, error) {
	key := fmt.Sprintf(constants.KeyJobDescriptionParsed, TextHash(text))
	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.JobDescriptionRecord{}, false, nil
	}
	if err != nil {
		return types.JobDescriptionRecord{}, false, err
	}

	var jd types.JobDescriptionRecord
	if err := json.Unmarshal(val, &jd); err != nil {
		// 缓存内容损坏时当作未命中
		r.logger.Warn().Err(err).Str("key", key).Msg("岗位解析缓存反序列化失败")
		return types.JobDescriptionRecord{}, false, nil
	}
	return jd, true, nil
}

// CacheJobDescription 写入岗位解析缓存
func (r *Redis) CacheJobDescription(ctx context.Context, text string, jd types.JobDescriptionRecord) error {
	data, err := json.Marshal(jd)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(constants.KeyJobDescriptionParsed, TextHash(text))
	return r.Client.Set(ctx, key, data, r.jdCacheTTL()).Err()
}

// GetVector 读取向量缓存，实现 embedding.VectorCache
func (r *Redis) GetVector(ctx context.Context, key string) ([]float64, bool, error) {
	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var vec []float64
	if err := json.Unmarshal(val, &vec); err != nil {
		return nil, false, fmt.Errorf("向量缓存反序列化失败: %w", err)
	}
	return vec, true, nil
}

// SetVector 写入向量缓存，ttl为0表示不过期
func (r *Redis) SetVector(ctx context.Context, key string, vector []float64, ttl time.Duration) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, ttl).Err()
}
