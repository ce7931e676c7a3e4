package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"musichub/db"
	"musichub/model"

	"github.com/go-redis/redis/v8"
)

const (
	catalogKey = "catalog:songs"
	catalogTTL = 5 * time.Minute
)

// CatalogCache 缓存公共歌曲目录，降低目录查询的数据库压力
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache 创建目录缓存
func NewCatalogCache() *CatalogCache {
	return &CatalogCache{client: db.RedisClient}
}

// Get 读取缓存的目录，缓存未命中时返回 (nil, nil)
func (c *CatalogCache) Get(ctx context.Context) ([]*model.Song, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached catalog: %w", err)
	}

	var songs []*model.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached catalog: %w", err)
	}
	return songs, nil
}

// Set 写入目录缓存
func (c *CatalogCache) Set(ctx context.Context, songs []*model.Song) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey, data, catalogTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}
	return nil
}

// Invalidate 使目录缓存失效（管理端增删歌曲后调用）
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}
