package auth

import (
	"testing"

	"github.com/gomenu/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{Secret: "secret", Issuer: "gomenu", Expire: 60})

	token, err := m.GenerateToken(7, "editor", "menu:write")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "editor", claims.Username)
	assert.True(t, claims.HasRole("menu:write"))
	assert.False(t, claims.HasRole("admin"))
}

func TestParseRejectsForeignSecret(t *testing.T) {
	a := NewJWTManager(&config.JWTConfig{Secret: "a", Expire: 60})
	b := NewJWTManager(&config.JWTConfig{Secret: "b", Expire: 60})

	token, err := a.GenerateToken(1, "x")
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseExpired(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{Secret: "s", Expire: -60})
	token, err := m.GenerateToken(1, "x")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseMalformed(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{Secret: "s", Expire: 60})
	_, err := m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestParseChecksIssuer(t *testing.T) {
	other := NewJWTManager(&config.JWTConfig{Secret: "s", Issuer: "other", Expire: 60})
	token, err := other.GenerateToken(1, "x")
	require.NoError(t, err)

	m := NewJWTManager(&config.JWTConfig{Secret: "s", Issuer: "gomenu", Expire: 60})
	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
