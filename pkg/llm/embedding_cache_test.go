package llm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder 记录底层调用次数的 Embedding 供应商。
type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func (c *countingEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) Name() string {
	return "counting"
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func TestCachedEmbeddingProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("单条命中缓存后不再调用底层", func(t *testing.T) {
		inner := &countingEmbedder{}
		cached := NewCachedEmbeddingProvider(inner, newTestRedis(t), &EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       time.Minute,
			KeyPrefix: "emb:",
		})

		first, err := cached.EmbedSingle(ctx, "hello world")
		require.NoError(t, err)

		second, err := cached.EmbedSingle(ctx, "hello world")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("批量只计算未命中的文本", func(t *testing.T) {
		inner := &countingEmbedder{}
		cached := NewCachedEmbeddingProvider(inner, newTestRedis(t), &EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       time.Minute,
			KeyPrefix: "emb:",
		})

		_, err := cached.EmbedSingle(ctx, "a")
		require.NoError(t, err)

		out, err := cached.Embed(ctx, []string{"a", "bb", "ccc"})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, []float32{1}, out[0])
		assert.Equal(t, []float32{2}, out[1])
		assert.Equal(t, []float32{3}, out[2])
		// 一次 EmbedSingle 加一次批量计算未命中文本
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("禁用缓存时直接透传", func(t *testing.T) {
		inner := &countingEmbedder{}
		cached := NewCachedEmbeddingProvider(inner, nil, &EmbeddingCacheConfig{Enabled: false})

		_, err := cached.EmbedSingle(ctx, "x")
		require.NoError(t, err)
		_, err = cached.EmbedSingle(ctx, "x")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("ClearCache 清空后重新计算", func(t *testing.T) {
		inner := &countingEmbedder{}
		cached := NewCachedEmbeddingProvider(inner, newTestRedis(t), nil)

		_, err := cached.EmbedSingle(ctx, "persisted")
		require.NoError(t, err)

		require.NoError(t, cached.ClearCache(ctx))

		_, err = cached.EmbedSingle(ctx, "persisted")
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("缓存统计", func(t *testing.T) {
		inner := &countingEmbedder{}
		cached := NewCachedEmbeddingProvider(inner, newTestRedis(t), nil)

		_, err := cached.EmbedSingle(ctx, "stats")
		require.NoError(t, err)

		stats, err := cached.GetCacheStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, true, stats["enabled"])
		assert.Equal(t, 1, stats["key_count"])
	})
}
