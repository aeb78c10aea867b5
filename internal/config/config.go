package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "tracker.hujson"

// Config holds application configuration. Values come from defaults, then the
// optional config file, then the environment.
type Config struct {
	HTTPPort        string   `json:"http_port"`
	DatabasePath    string   `json:"database_path"`
	Timezone        string   `json:"timezone"`
	RedisURL        string   `json:"redis_url"` // empty disables the cache
	RedisPoolSize   int      `json:"redis_pool_size"`
	CacheTTL        int      `json:"cache_ttl_sec"` // seconds
	KafkaBrokers    []string `json:"kafka_brokers"` // empty disables events
	KafkaTopic      string   `json:"kafka_topic"`
	KafkaPartitions int      `json:"kafka_partitions"`
	LogLevel        string   `json:"log_level"`
	LogFormat       string   `json:"log_format"`
	WeatherAPIKey   string   `json:"weather_api_key"`
	WeatherCity     string   `json:"weather_city"`
	WeatherURL      string   `json:"weather_url"`
	WeatherUnits    string   `json:"weather_units"`
	WeatherLang     string   `json:"weather_lang"`
	ChartDir        string   `json:"chart_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPPort:        "8080",
		DatabasePath:    "tasks.db",
		Timezone:        "Local",
		RedisPoolSize:   50,
		CacheTTL:        300,
		KafkaTopic:      "task-events",
		KafkaPartitions: 4,
		LogLevel:        "info",
		LogFormat:       "json",
		WeatherCity:     "Buenos Aires,AR",
		WeatherURL:      "https://api.openweathermap.org/data/2.5/weather",
		WeatherUnits:    "metric",
		WeatherLang:     "en",
		ChartDir:        ".",
	}
}

// Load builds the configuration. path may be empty, in which case DefaultFile is
// used if present; an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	cfg.mergeEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := json.Unmarshal(std, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RedisPoolSize = getIntEnv("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.CacheTTL = getIntEnv("CACHE_TTL_SEC", c.CacheTTL)
	c.KafkaBrokers = getSliceEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaPartitions = getIntEnv("KAFKA_PARTITIONS", c.KafkaPartitions)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.WeatherAPIKey = getEnv("WEATHER_API_KEY", c.WeatherAPIKey)
	c.WeatherCity = getEnv("WEATHER_CITY", c.WeatherCity)
	c.WeatherURL = getEnv("WEATHER_URL", c.WeatherURL)
	c.WeatherUnits = getEnv("WEATHER_UNITS", c.WeatherUnits)
	c.WeatherLang = getEnv("WEATHER_LANG", c.WeatherLang)
	c.ChartDir = getEnv("CHART_DIR", c.ChartDir)
}

// Location resolves Timezone; "" and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheTTLDuration is CacheTTL as a duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
