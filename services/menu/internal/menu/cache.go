package menu

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomenu/pkg/database"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/services/menu/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AliasCache 按别名缓存菜单，并发未命中合并为一次加载
type AliasCache struct {
	cache   *database.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *Metrics
}

// NewAliasCache 创建别名缓存，ttl 为 0 表示永不过期
func NewAliasCache(client *redis.Client, prefix string, ttl time.Duration) *AliasCache {
	return &AliasCache{
		cache: database.NewCache(client, prefix),
		ttl:   ttl,
	}
}

func aliasKey(alias string) string {
	return "alias:" + alias
}

// Get 读取缓存，未命中时调用 load 并回填；load 返回 nil 时不缓存
func (c *AliasCache) Get(ctx context.Context, alias string, load func(context.Context) (*model.Menu, error)) (*model.Menu, error) {
	data, err := c.cache.GetBytes(ctx, aliasKey(alias))
	switch {
	case err == nil:
		var menu model.Menu
		if err := json.Unmarshal(data, &menu); err == nil {
			c.metrics.cacheLookup("hit")
			return &menu, nil
		}
		logger.Ctx(ctx).Warn("menu cache entry corrupted", zap.String("alias", alias))
	case errors.Is(err, redis.Nil):
		c.metrics.cacheLookup("miss")
	default:
		c.metrics.cacheLookup("error")
		logger.Ctx(ctx).Warn("menu cache read failed", zap.String("alias", alias), zap.Error(err))
	}

	v, err, _ := c.group.Do(alias, func() (interface{}, error) {
		menu, err := load(ctx)
		if err != nil || menu == nil {
			return nil, err
		}
		payload, err := json.Marshal(menu)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, aliasKey(alias), payload, c.ttl); err != nil {
			logger.Ctx(ctx).Warn("menu cache write failed", zap.String("alias", alias), zap.Error(err))
		}
		return payload, nil
	})
	if err != nil || v == nil {
		return nil, err
	}

	// 每个调用方解码自己的副本
	var menu model.Menu
	if err := json.Unmarshal(v.([]byte), &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// Invalidate 删除别名对应的缓存
func (c *AliasCache) Invalidate(ctx context.Context, aliases ...string) {
	keys := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if a != "" {
			keys = append(keys, aliasKey(a))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Del(ctx, keys...); err != nil {
		logger.Ctx(ctx).Warn("menu cache invalidation failed", zap.Strings("aliases", aliases), zap.Error(err))
	}
}
