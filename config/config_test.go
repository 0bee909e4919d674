package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/padel?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 3, cfg.ZoneSize)
	assert.Equal(t, 2, cfg.QualifiersPerZone)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ZONE_SIZE", "4")
	t.Setenv("QUALIFIERS_PER_ZONE", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "bucket")
	t.Setenv("R2_PUBLIC_BASE_URL", "https://cdn.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 4, cfg.ZoneSize)
	assert.Equal(t, 3, cfg.QualifiersPerZone)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing db":        {"DATABASE_URL": "", "JWT_SECRET_KEY": "x"},
		"missing jwt":       {"DATABASE_URL": "postgres://x", "JWT_SECRET_KEY": ""},
		"bad port":          {"SERVER_PORT": "abc"},
		"port out of range": {"SERVER_PORT": "70000"},
		"zone too small":    {"ZONE_SIZE": "2"},
		"too many qualify":  {"QUALIFIERS_PER_ZONE": "4"},
		"bad log level":     {"LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
