package menu

import (
	"context"
	"testing"

	"github.com/gomenu/pkg/config"
	"github.com/gomenu/pkg/database"
	"github.com/gomenu/pkg/utils"
	"github.com/gomenu/services/menu/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewManager(NewMenuRepository(db), NewItemRepository(db), opts...), db
}

// seedMenu 创建包含 n 个根菜单项的菜单，菜单项依次命名为 item0..itemN
func seedMenu(t *testing.T, m *Manager, alias string, n int) *model.Menu {
	t.Helper()
	ctx := context.Background()
	menu := &model.Menu{Alias: alias, Name: alias}
	for i := 0; i < n; i++ {
		menu.Items = append(menu.Items, model.MenuItem{
			Name:     "item" + string(rune('0'+i)),
			Target:   model.TargetSelf,
			Position: i,
			Enabled:  true,
		})
	}
	require.NoError(t, m.Save(ctx, menu))

	loaded, err := m.Load(ctx, menu.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Items, n)
	return loaded
}

func itemIDs(menu *model.Menu) []int64 {
	return utils.Map(menu.Items, func(item model.MenuItem) int64 { return item.ID })
}

func findItem(t *testing.T, menu *model.Menu, id int64) *model.MenuItem {
	t.Helper()
	for i := range menu.Items {
		if menu.Items[i].ID == id {
			return &menu.Items[i]
		}
	}
	t.Fatalf("item %d not found in menu %d", id, menu.ID)
	return nil
}
