package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedClient 带内存缓存的嵌入客户端
// 包装真实客户端，同一轮运行内相同文本只嵌入一次
type CachedClient struct {
	inner Client
	cache *gocache.Cache
}

// NewCachedClient 创建缓存嵌入客户端
func NewCachedClient(inner Client, ttl time.Duration) *CachedClient {
	if ttl == 0 {
		ttl = time.Hour
	}

	return &CachedClient{
		inner: inner,
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Name 返回底层模型名称
func (c *CachedClient) Name() string {
	return c.inner.Name()
}

// Embed 生成单条文本的向量表示，命中缓存时不访问底层客户端
func (c *CachedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if value, found := c.cache.Get(key); found {
		if vector, ok := value.([]float32); ok {
			return vector, nil
		}
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

// EmbedBatch 批量生成向量，逐条利用缓存，未命中的部分合并请求
func (c *CachedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if value, found := c.cache.Get(c.cacheKey(text)); found {
			if vector, ok := value.([]float32); ok {
				result[i] = vector
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	vectors, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, vector := range vectors {
		if j >= len(missingIdx) || vector == nil {
			continue
		}
		i := missingIdx[j]
		result[i] = vector
		c.cache.Set(c.cacheKey(texts[i]), vector, gocache.DefaultExpiration)
	}

	return result, nil
}

// cacheKey 生成缓存键，包含模型名避免跨模型串用
func (c *CachedClient) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Name() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
