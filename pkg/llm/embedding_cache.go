package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docqa/pkg/utils/json"
)

// EmbeddingCacheConfig Embedding 缓存配置。
type EmbeddingCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// DefaultEmbeddingCacheConfig 返回默认的 Embedding 缓存配置。
func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		Enabled: true,
		// 同一文本的 Embedding 不会变，可以放心缓存一整天
		TTL:       24 * time.Hour,
		KeyPrefix: "emb:",
	}
}

// CachedEmbeddingProvider 用 Redis 缓存包装底层 EmbeddingProvider。
// 缓存层的任何故障都只降级为直连底层 provider，不向上传播。
type CachedEmbeddingProvider struct {
	provider EmbeddingProvider
	redis    *goredis.Client
	config   *EmbeddingCacheConfig
}

var _ EmbeddingProvider = (*CachedEmbeddingProvider)(nil)

// NewCachedEmbeddingProvider 创建带缓存的 Embedding Provider。
// config 为 nil 时使用默认配置。
func NewCachedEmbeddingProvider(
	provider EmbeddingProvider,
	redis *goredis.Client,
	config *EmbeddingCacheConfig,
) *CachedEmbeddingProvider {
	if config == nil {
		config = DefaultEmbeddingCacheConfig()
	}
	return &CachedEmbeddingProvider{
		provider: provider,
		redis:    redis,
		config:   config,
	}
}

// bypass 报告是否应跳过缓存直连底层 provider。
func (c *CachedEmbeddingProvider) bypass() bool {
	return !c.config.Enabled || c.redis == nil
}

// cacheKey 对文本取 SHA256 作为缓存键，避免把原文写进 Redis。
func (c *CachedEmbeddingProvider) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// lookup 查缓存，命中时返回向量。损坏的缓存条目顺手删除。
func (c *CachedEmbeddingProvider) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("redis get error, falling back to provider",
				"error", err.Error(),
			)
		}
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		logger.Warnw("failed to unmarshal cached embedding, deleting",
			"error", err.Error(),
			"key", key,
		)
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return embedding, true
}

// store 写缓存。序列化或写入失败只记日志，结果照常返回给调用方。
func (c *CachedEmbeddingProvider) store(ctx context.Context, key string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err != nil {
		logger.Warnw("failed to marshal embedding for caching", "error", err.Error())
		return
	}
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to cache embedding",
			"error", err.Error(),
			"key", key,
		)
	}
}

// EmbedSingle 生成单个文本的 Embedding，优先走缓存。
func (c *CachedEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if c.bypass() {
		return c.provider.EmbedSingle(ctx, text)
	}

	key := c.cacheKey(text)
	if embedding, ok := c.lookup(ctx, key); ok {
		logger.Debugw("embedding cache hit", "text_length", len(text), "key", key)
		return embedding, nil
	}

	logger.Debugw("embedding cache miss", "text_length", len(text), "key", key)
	embedding, err := c.provider.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, embedding)
	return embedding, nil
}

// Embed 批量生成 Embedding。命中的直接取缓存，未命中的合并为一次
// 底层批量调用，算完再逐条回填缓存。
func (c *CachedEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.bypass() {
		return c.provider.Embed(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	var missedIndices []int
	var missedTexts []string

	for i, text := range texts {
		if embedding, ok := c.lookup(ctx, c.cacheKey(text)); ok {
			embeddings[i] = embedding
			continue
		}
		missedIndices = append(missedIndices, i)
		missedTexts = append(missedTexts, text)
	}

	if len(missedTexts) == 0 {
		logger.Infow("all embeddings from cache", "total", len(texts))
		return embeddings, nil
	}

	logger.Infow("embedding cache miss (batch)",
		"total", len(texts),
		"uncached", len(missedTexts),
	)
	computed, err := c.provider.Embed(ctx, missedTexts)
	if err != nil {
		return nil, err
	}

	for i, idx := range missedIndices {
		embeddings[idx] = computed[i]
		c.store(ctx, c.cacheKey(missedTexts[i]), computed[i])
	}

	return embeddings, nil
}

// Name 返回底层 provider 的名称并加上 -cached 后缀。
func (c *CachedEmbeddingProvider) Name() string {
	return c.provider.Name() + "-cached"
}

// ClearCache 用 SCAN 遍历并删除所有 Embedding 缓存键。
func (c *CachedEmbeddingProvider) ClearCache(ctx context.Context) error {
	if c.bypass() {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key",
				"error", err.Error(),
				"key", iter.Val(),
			)
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("error during cache scan", "error", err.Error())
		return err
	}

	logger.Infow("cleared embedding cache", "deleted_count", deleted)
	return nil
}

// GetCacheStats 返回缓存键数量等统计信息。
func (c *CachedEmbeddingProvider) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	if c.bypass() {
		return map[string]interface{}{
			"enabled": false,
		}, nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()

	keyCount := 0
	for iter.Next(ctx) {
		keyCount++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"enabled":    true,
		"key_count":  keyCount,
		"ttl":        c.config.TTL.String(),
		"key_prefix": c.config.KeyPrefix,
		"provider":   c.provider.Name(),
	}, nil
}
