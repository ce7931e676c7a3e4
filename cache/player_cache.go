package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"musichub/db"
	"musichub/model"

	"github.com/go-redis/redis/v8"
)

// PlayerStateCache 在Redis中保存每个用户的播放快照
// Keys are namespaced per identity so sessions for different users never
// collide: player_state:<userID>.
type PlayerStateCache struct {
	client *redis.Client
}

// NewPlayerStateCache 创建播放状态缓存
func NewPlayerStateCache() *PlayerStateCache {
	return &PlayerStateCache{client: db.RedisClient}
}

// playerStateKey 根据用户ID生成播放状态的Redis键
func playerStateKey(userID int64) string {
	return fmt.Sprintf("player_state:%d", userID)
}

// Save 写入用户的播放快照（无过期时间，登出或覆盖时清除）
func (c *PlayerStateCache) Save(ctx context.Context, userID int64, snapshot *model.PlayerSnapshot) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal player snapshot: %w", err)
	}

	if err := c.client.Set(ctx, playerStateKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save player snapshot: %w", err)
	}
	return nil
}

// Load 读取用户的播放快照，不存在时返回 (nil, nil)
func (c *PlayerStateCache) Load(ctx context.Context, userID int64) (*model.PlayerSnapshot, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := c.client.Get(ctx, playerStateKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load player snapshot: %w", err)
	}

	var snapshot model.PlayerSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player snapshot: %w", err)
	}
	return &snapshot, nil
}

// Clear 删除用户的播放快照
func (c *PlayerStateCache) Clear(ctx context.Context, userID int64) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := c.client.Del(ctx, playerStateKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear player snapshot: %w", err)
	}
	return nil
}
