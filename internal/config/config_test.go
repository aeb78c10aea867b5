package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HTTP_PORT", "DATABASE_PATH", "TIMEZONE", "REDIS_URL", "REDIS_POOL_SIZE", "CACHE_TTL_SEC",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_PARTITIONS", "LOG_LEVEL", "LOG_FORMAT",
	"WEATHER_API_KEY", "WEATHER_CITY", "WEATHER_URL", "WEATHER_UNITS", "WEATHER_LANG", "CHART_DIR",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "tracker.hujson", `{
		// local development
		"database_path": "data/dev.db",
		"http_port": "9090",
		"kafka_brokers": ["k1:9092"],
		"cache_ttl_sec": 60, // trailing commas are fine
	}`)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/dev.db", cfg.DatabasePath)
	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.CacheTTLDuration())
	assert.Equal(t, "task-events", cfg.KafkaTopic)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`{"weather_city": "Rosario,AR"}`), 0o600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Rosario,AR", cfg.WeatherCity)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.hujson"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.hujson", `{"http_port": `))
		assert.Error(t, err)
	})

	t.Run("invalid integer env falls back", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("CACHE_TTL_SEC", "soon")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 300, cfg.CacheTTL)
	})
}

func TestConfig_Location(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "# comment\nTRACKER_A=\"quoted\"\nexport TRACKER_B='single'\nTRACKER_C=keep\nnot a pair\n")
	t.Setenv("TRACKER_C", "already")
	t.Setenv("TRACKER_A", "")
	t.Setenv("TRACKER_B", "")

	LoadEnvFile(path)

	assert.Equal(t, "quoted", os.Getenv("TRACKER_A"))
	assert.Equal(t, "single", os.Getenv("TRACKER_B"))
	assert.Equal(t, "already", os.Getenv("TRACKER_C"))
}
