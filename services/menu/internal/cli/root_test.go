package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomenu/pkg/auth"
	"github.com/gomenu/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  env: test
database:
  driver: sqlite
  database: ` + filepath.Join(dir, "menu.db") + `
  logLevel: silent
redis:
  mode: disabled
jwt:
  secret: cli-secret
  issuer: gomenu
  expire: 60
log:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t)
	token := run(t, "--config", path, "token", "--editor", "--user-id", "7", "--username", "alice")

	claims, err := auth.NewJWTManager(&config.JWTConfig{Secret: "cli-secret", Issuer: "gomenu", Expire: 60}).ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.HasRole("menu:write"))
}

func TestMigrateCommand(t *testing.T) {
	path := writeConfig(t)
	assert.Equal(t, "migration completed", run(t, "--config", path, "migrate"))
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "menu.db"))
}

func TestUnknownConfig(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "migrate"})
	assert.Error(t, cmd.Execute())
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: ${MENU_UNSET_SECRET}\nlog:\n  level: error\n"), 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "serve"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}
