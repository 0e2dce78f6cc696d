package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ideas "github.com/vivaneiona/reddit-ideas"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "GOOGLE_SHEET_ID", "GOOGLE_APPLICATION_CREDENTIALS", "PORT",
		"REDDIT_IDEAS_GEMINI_API_KEY", "REDDIT_IDEAS_GEMINI_BASE_URL", "REDDIT_IDEAS_GOOGLE_SHEET_ID",
		"REDDIT_IDEAS_GOOGLE_APPLICATION_CREDENTIALS", "REDDIT_IDEAS_SHEET_RANGE", "REDDIT_IDEAS_SHEET_HEADER", "REDDIT_IDEAS_HTTP_TIMEOUT",
		"REDDIT_IDEAS_MODELS", "REDDIT_IDEAS_REDDIT_RPS", "REDDIT_IDEAS_LOG_LEVEL", "REDDIT_IDEAS_LISTEN_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Sheet1!A:J", cfg.SheetRange)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Zero(t, cfg.RedditRPS)
	assert.False(t, cfg.SheetHeader)
	assert.Empty(t, cfg.Models)
	assert.Equal(t, ideas.DefaultModels, cfg.ModelChain())
	assert.False(t, cfg.SheetsEnabled())

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadConfig_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key-1")
	t.Setenv("GOOGLE_SHEET_ID", "sheet")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	t.Setenv("REDDIT_IDEAS_HTTP_TIMEOUT", "30s")
	t.Setenv("REDDIT_IDEAS_MODELS", "gemini-a, gemini-b")
	t.Setenv("REDDIT_IDEAS_REDDIT_RPS", "0.5")
	t.Setenv("REDDIT_IDEAS_LOG_LEVEL", "debug")
	t.Setenv("REDDIT_IDEAS_SHEET_HEADER", "true")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "key-1", cfg.GeminiAPIKey)
	assert.True(t, cfg.SheetsEnabled())
	assert.True(t, cfg.SheetHeader)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []ideas.Model{"gemini-a", "gemini-b"}, cfg.ModelChain())
	assert.Equal(t, 0.5, cfg.RedditRPS)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadConfig_SheetsNeedBothVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_ID", "sheet")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gemini_api_key: from-file
models:
  - gemini-x
  - gemini-y
http_timeout: 5s
listen_addr: 127.0.0.1:9000
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, []ideas.Model{"gemini-x", "gemini-y"}, cfg.ModelChain())
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)

	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GeminiAPIKey, "environment wins over the file")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ideas.ErrIO)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "k", HTTPTimeout: 0}
	assert.Error(t, cfg.Validate())

	cfg.HTTPTimeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "ERROR"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "loud"}).SlogLevel())
}
