package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "DEFAULT", cfg.Symbol)
	assert.Equal(t, DefaultSeparator, cfg.Separator)
	assert.Equal(t, "data/matchd.log", cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Storage.JournalFile)
	assert.Equal(t, "", cfg.Storage.TradeDB)
	assert.Equal(t, "", cfg.API.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.CORSOrigins)
}

func TestLoadFromEnv_EmptySeparatorFallsBack(t *testing.T) {
	t.Setenv("SEPARATOR", "")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSeparator, cfg.Separator)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("SYMBOL", "BTC-USD")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRADE_DB", "/tmp/trades")
	t.Setenv("API_ADDR", ":8080")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SEPARATOR", "==")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "BTC-USD", cfg.Symbol)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data/matchd.log", cfg.Log.File)
	assert.Equal(t, "/tmp/trades", cfg.Storage.TradeDB)
	assert.Equal(t, "", cfg.Storage.JournalFile)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.CORSOrigins)
	assert.Equal(t, "==", cfg.Separator)
}

func TestLoadFromEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOURNAL_FILE=data/journal.log\n"), 0o644))
	// godotenv.Load sets process env; clear it once the test ends.
	t.Setenv("JOURNAL_FILE", "")
	require.NoError(t, os.Unsetenv("JOURNAL_FILE"))

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "data/journal.log", cfg.Storage.JournalFile)
}
