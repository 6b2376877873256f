package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Fetch strategies selectable per run.
const (
	FetchStatic = "static"
	FetchChrome = "chrome"
)

// Config represents the application configuration
type Config struct {
	// Data files
	DataDir          string
	WebDir           string
	CompetitorsPath  string
	PinsPath         string
	PlacesCachePath  string
	MentionsPath     string
	OffersPath       string
	OffersHistory    string
	StatusPath       string
	OwnStudioPath    string

	// Google Places
	PlacesKey     string
	PlacesKeyPath string

	// Fetching
	FetchStrategy   string
	FetchTimeout    time.Duration
	ChromeBin       string
	ChromeSettle    time.Duration
	CrawlLimit      int
	PlacesDelay     time.Duration
	CompetitorDelay time.Duration

	// Redis offer stream (optional, disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache fetch guard (optional, disabled when MemcacheAddr is empty)
	MemcacheAddr string
	BlockTime    time.Duration

	// HTTP server
	ListenAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	dataDir := getEnv("DATA_DIR", "data")
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	crawlLimit, _ := strconv.Atoi(getEnv("CRAWL_LIMIT", "40"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "25"))
	settleMs, _ := strconv.Atoi(getEnv("CHROME_SETTLE_MS", "1200"))
	placesDelayMs, _ := strconv.Atoi(getEnv("PLACES_DELAY_MS", "200"))
	competitorDelayMs, _ := strconv.Atoi(getEnv("COMPETITOR_DELAY_MS", "300"))
	blockSeconds, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))

	return Config{
		DataDir:         dataDir,
		WebDir:          getEnv("WEB_DIR", "web"),
		CompetitorsPath: filepath.Join(dataDir, "competitors.csv"),
		PinsPath:        filepath.Join(dataDir, "pinned_competitors.json"),
		PlacesCachePath: filepath.Join(dataDir, "places_cache.json"),
		MentionsPath:    filepath.Join(dataDir, "pricing_pages.csv"),
		OffersPath:      filepath.Join(dataDir, "offers.csv"),
		OffersHistory:   filepath.Join(dataDir, "offers_history.csv"),
		StatusPath:      filepath.Join(dataDir, "refresh_status.json"),
		OwnStudioPath:   filepath.Join(dataDir, "own_studio.json"),

		PlacesKey:     getEnv("GOOGLE_PLACES_KEY", ""),
		PlacesKeyPath: getEnv("GOOGLE_PLACES_KEY_PATH", ""),

		FetchStrategy:   getEnv("FETCH_STRATEGY", FetchStatic),
		FetchTimeout:    time.Duration(fetchTimeout) * time.Second,
		ChromeBin:       getEnv("CHROME_BIN", ""),
		ChromeSettle:    time.Duration(settleMs) * time.Millisecond,
		CrawlLimit:      crawlLimit,
		PlacesDelay:     time.Duration(placesDelayMs) * time.Millisecond,
		CompetitorDelay: time.Duration(competitorDelayMs) * time.Millisecond,

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "offers"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		BlockTime:    time.Duration(blockSeconds) * time.Second,

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),

		Environment: getEnv("YOGABENCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	if c.FetchStrategy != FetchStatic && c.FetchStrategy != FetchChrome {
		return fmt.Errorf("invalid fetch strategy %q (want %q or %q)", c.FetchStrategy, FetchStatic, FetchChrome)
	}
	if c.CrawlLimit <= 0 {
		return fmt.Errorf("crawl limit must be positive, got %d", c.CrawlLimit)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		return fmt.Errorf("redis stream count must be positive, got %d", c.RedisStreamCount)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
