package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://draw.example.com")
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://draw.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.ICEServers)
}

func TestLoadMissingRequired(t *testing.T) {
	// t.Setenv records the original values so os.Unsetenv is restored too.
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")

	t.Run("missing jwt key", func(t *testing.T) {
		t.Setenv("JWT_KEY", "x")
		os.Unsetenv("JWT_KEY")
		_, err := Load()
		require.ErrorContains(t, err, "JWT_KEY")
	})

	t.Run("missing origins", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "x")
		os.Unsetenv("ALLOWED_ORIGINS")
		_, err := Load()
		require.ErrorContains(t, err, "ALLOWED_ORIGINS")
	})
}
