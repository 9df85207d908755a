package menu

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomenu/services/menu/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*AliasCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewAliasCache(client, "menu", 5*time.Minute), mr
}

func TestLoadByAliasUsesCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	reg := prometheus.NewRegistry()
	m, db := newTestManager(t, WithCache(cache), WithMetrics(NewMetrics(reg)))
	menu := seedMenu(t, m, "main", 2)

	first, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, mr.Exists("menu:alias:main"))
	assert.Equal(t, 5*time.Minute, mr.TTL("menu:alias:main"))

	// 绕过管理器修改数据库，缓存仍返回旧值
	require.NoError(t, db.Model(&model.Menu{}).Where("id = ?", menu.ID).Update("name", "changed").Error)
	cached, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", cached.Name)
	assert.Len(t, cached.Items, 2)
	assert.NotSame(t, first, cached)

	expected := `
# HELP menu_alias_cache_lookups_total Menu alias cache lookups by result.
# TYPE menu_alias_cache_lookups_total counter
menu_alias_cache_lookups_total{result="hit"} 1
menu_alias_cache_lookups_total{result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "menu_alias_cache_lookups_total"))
}

func TestCacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	m, _ := newTestManager(t, WithCache(cache))
	menu := seedMenu(t, m, "main", 2)
	ids := itemIDs(menu)

	_, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	require.True(t, mr.Exists("menu:alias:main"))

	_, err = m.UpdateMenuTree(ctx, menu, []TreeNode{{ID: ids[1]}, {ID: ids[0]}})
	require.NoError(t, err)
	assert.False(t, mr.Exists("menu:alias:main"))

	fresh, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 0, findItem(t, fresh, ids[1]).Position)

	menu.Alias = "primary"
	require.NoError(t, m.Save(ctx, menu))
	assert.False(t, mr.Exists("menu:alias:main"))

	old, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	assert.Nil(t, old)

	_, err = m.LoadByAlias(ctx, "primary")
	require.NoError(t, err)
	require.True(t, mr.Exists("menu:alias:primary"))

	require.NoError(t, m.Remove(ctx, menu))
	assert.False(t, mr.Exists("menu:alias:primary"))
}

func TestCacheSkipsMissingMenus(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	m, _ := newTestManager(t, WithCache(cache))

	menu, err := m.LoadByAlias(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, menu)
	assert.False(t, mr.Exists("menu:alias:ghost"))
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	m, _ := newTestManager(t, WithCache(cache))
	seedMenu(t, m, "main", 1)

	mr.Close()

	menu, err := m.LoadByAlias(ctx, "main")
	require.NoError(t, err)
	require.NotNil(t, menu)
	assert.Equal(t, "main", menu.Alias)
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("menu:alias:main", "{not json"))

	calls := 0
	menu, err := cache.Get(ctx, "main", func(context.Context) (*model.Menu, error) {
		calls++
		return &model.Menu{Alias: "main", Name: "Main"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Main", menu.Name)

	// 回填后直接命中
	_, err = cache.Get(ctx, "main", func(context.Context) (*model.Menu, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
