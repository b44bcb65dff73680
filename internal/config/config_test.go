package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LEETNOTE_DATABASE_URL", "postgres://localhost/leetnote")
	t.Setenv("LEETNOTE_JWT_SECRET", "secret")
	t.Setenv("LEETNOTE_AI_API_KEY", "key")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "LeetNote API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "leetnote.evaluations", cfg.NATSSubject)
	require.Equal(t, "https://api.together.xyz/v1", cfg.AIBaseURL)
	require.Equal(t, "meta-llama/Llama-3.2-3B-Instruct-Turbo", cfg.AIModel)
	require.Equal(t, 30*time.Minute, cfg.CacheDefaultTTL)
	require.Equal(t, 5, cfg.UploadMaxSizeMB)
	require.False(t, cfg.CloudinaryEnabled())
}

func TestLoadReadsEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("LEETNOTE_APP_PORT", ":9090")
	t.Setenv("LEETNOTE_CACHE_DEFAULT_TTL", "1h")
	t.Setenv("LEETNOTE_AI_MODEL", "custom-model")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, time.Hour, cfg.CacheDefaultTTL)
	require.Equal(t, "custom-model", cfg.AIModel)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("LEETNOTE_CACHE_DEFAULT_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("LEETNOTE_DATABASE_URL", "postgres://localhost/leetnote")
	t.Setenv("LEETNOTE_JWT_SECRET", "")
	t.Setenv("LEETNOTE_AI_API_KEY", "key")

	_, err := Load()
	require.Error(t, err)
}
