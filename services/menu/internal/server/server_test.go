package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomenu/pkg/auth"
	"github.com/gomenu/pkg/config"
	"github.com/gomenu/pkg/database"
	"github.com/gomenu/services/menu/internal/menu"
	"github.com/gomenu/services/menu/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	srv    *Server
	reader string
	editor string
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HTTP: config.HTTPConfig{
			Host: "127.0.0.1", Port: 0, ReadTimeout: 5, WriteTimeout: 5, ShutdownTimeout: 1,
		}},
		Database: config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "menu-test", Expire: 60},
		Menu:     config.MenuConfig{CacheTTL: 60, CachePrefix: "menu"},
	}
}

func newTestServer(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	cfg := testConfig()
	db, err := database.Open(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, menu.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwtm := auth.NewJWTManager(&cfg.JWT)
	reader, err := jwtm.GenerateToken(1, "reader")
	require.NoError(t, err)
	editor, err := jwtm.GenerateToken(2, "editor", EditorRole)
	require.NoError(t, err)

	return &testServer{t: t, srv: New(cfg, db, rdb), reader: reader, editor: editor}
}

// do 发送请求，out 非空时解析 data 字段
func (ts *testServer) do(method, path, token string, body interface{}, out interface{}) int {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.App.Test(req, -1)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		var env envelope
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(&env))
		require.NoError(ts.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func (ts *testServer) createMenu(alias string, items ...string) model.Menu {
	ts.t.Helper()
	var m model.Menu
	require.Equal(ts.t, http.StatusOK, ts.do("POST", "/menus", ts.editor, menu.CreateRequest{Alias: alias, Name: alias}, &m))
	for _, name := range items {
		var item model.MenuItem
		path := fmt.Sprintf("/menus/%d/items", m.ID)
		require.Equal(ts.t, http.StatusOK, ts.do("POST", path, ts.editor, menu.CreateItemRequest{Name: name}, &item))
		m.Items = append(m.Items, item)
	}
	return m
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, ts.do("GET", "/health", "", nil, nil))
	assert.Equal(t, http.StatusOK, ts.do("GET", "/metrics", "", nil, nil))
}

func TestMenuRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/menus", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, ts.do("POST", "/menus", ts.reader, menu.CreateRequest{Alias: "main", Name: "Main"}, nil))
	assert.Equal(t, http.StatusOK, ts.do("GET", "/menus", ts.reader, nil, nil))
}

func TestMenuCRUD(t *testing.T) {
	ts := newTestServer(t, nil)
	created := ts.createMenu("main", "home", "about")
	require.Len(t, created.Items, 2)
	assert.Equal(t, 1, created.Items[1].Position)
	assert.True(t, created.Items[0].Enabled)

	assert.Equal(t, http.StatusConflict, ts.do("POST", "/menus", ts.editor, menu.CreateRequest{Alias: "main", Name: "dup"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/menus", ts.editor, menu.CreateRequest{Name: "no alias"}, nil))

	var got model.Menu
	require.Equal(t, http.StatusOK, ts.do("GET", "/menus/alias/main", ts.reader, nil, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Len(t, got.Items, 2)

	path := fmt.Sprintf("/menus/%d", created.ID)
	var updated model.Menu
	require.Equal(t, http.StatusOK, ts.do("PUT", path, ts.editor, menu.UpdateRequest{Alias: "primary"}, &updated))
	assert.Equal(t, "primary", updated.Alias)
	assert.Equal(t, "main", updated.Name)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/menus/alias/main", ts.reader, nil, nil))

	var list []model.Menu
	require.Equal(t, http.StatusOK, ts.do("GET", "/menus", ts.reader, nil, &list))
	require.Len(t, list, 1)

	require.Equal(t, http.StatusOK, ts.do("DELETE", path, ts.editor, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do("GET", path, ts.reader, nil, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do("GET", "/menus/abc", ts.reader, nil, nil))
}

func TestMenuItemsFilterAndUpdate(t *testing.T) {
	ts := newTestServer(t, nil)
	m := ts.createMenu("main", "home", "docs")

	off := false
	itemPath := fmt.Sprintf("/menus/%d/items/%d", m.ID, m.Items[1].ID)
	var item model.MenuItem
	require.Equal(t, http.StatusOK, ts.do("PUT", itemPath, ts.editor, menu.UpdateItemRequest{Enabled: &off, Icon: "book"}, &item))
	assert.False(t, item.Enabled)
	assert.Equal(t, "book", item.Icon)

	assert.Equal(t, http.StatusBadRequest, ts.do("PUT", itemPath, ts.editor, menu.UpdateItemRequest{Target: "_window"}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do("PUT", fmt.Sprintf("/menus/%d/items/9999", m.ID), ts.editor, menu.UpdateItemRequest{Name: "x"}, nil))

	parent := m.Items[0].ID
	var child model.MenuItem
	require.Equal(t, http.StatusOK, ts.do("POST", fmt.Sprintf("/menus/%d/items", m.ID), ts.editor,
		menu.CreateItemRequest{Name: "intro", ParentID: &parent}, &child))
	assert.Equal(t, 0, child.Position)

	var items []model.MenuItem
	base := fmt.Sprintf("/menus/%d/items", m.ID)
	require.Equal(t, http.StatusOK, ts.do("GET", base+"?status=enabled", ts.reader, nil, &items))
	assert.Len(t, items, 2)
	require.Equal(t, http.StatusOK, ts.do("GET", base+"?root=root", ts.reader, nil, &items))
	assert.Len(t, items, 2)
	require.Equal(t, http.StatusOK, ts.do("GET", base+"?root=child&status=enabled", ts.reader, nil, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "intro", items[0].Name)
	assert.Equal(t, http.StatusBadRequest, ts.do("GET", base+"?root=leaf", ts.reader, nil, nil))
}

func TestMenuTreeEndpoints(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ts := newTestServer(t, rdb)
	m := ts.createMenu("main", "a", "b", "c")
	a, b, c := m.Items[0].ID, m.Items[1].ID, m.Items[2].ID
	treePath := fmt.Sprintf("/menus/%d/tree", m.ID)

	// 预热别名缓存
	require.Equal(t, http.StatusOK, ts.do("GET", "/menus/alias/main", ts.reader, nil, &model.Menu{}))
	require.True(t, mr.Exists("menu:alias:main"))

	req := menu.UpdateTreeRequest{Items: []menu.TreeNode{
		{ID: c, Children: []menu.TreeNode{{ID: a}, {ID: 9999}}},
		{ID: b},
	}}
	assert.Equal(t, http.StatusForbidden, ts.do("PUT", treePath, ts.reader, req, nil))

	var result menu.TreeResult
	require.Equal(t, http.StatusOK, ts.do("PUT", treePath, ts.editor, req, &result))
	assert.True(t, result.Applied)
	assert.Equal(t, []int64{c, a, b}, result.Updated)
	assert.Equal(t, []int64{9999}, result.Skipped)
	assert.False(t, mr.Exists("menu:alias:main"))

	var tree []*model.MenuItem
	require.Equal(t, http.StatusOK, ts.do("GET", treePath, ts.reader, nil, &tree))
	require.Len(t, tree, 2)
	assert.Equal(t, c, tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, a, tree[0].Children[0].ID)
	assert.Equal(t, b, tree[1].ID)

	var empty menu.TreeResult
	require.Equal(t, http.StatusOK, ts.do("PUT", treePath, ts.editor, menu.UpdateTreeRequest{}, &empty))
	assert.False(t, empty.Applied)
}
