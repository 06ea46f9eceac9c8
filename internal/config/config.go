package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Wiki source
	WikiAPIURL    string
	WikiUserAgent string
	MaxRedirects  int
	FetchDelay    time.Duration

	// Storage
	DataDir   string
	DBPath    string
	KindsFile string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("WIKISTRUCT_API_KEY"),

		WikiAPIURL:    envOr("WIKI_API_URL", "https://moegirl.icu/api.php"),
		WikiUserAgent: envOr("WIKI_USER_AGENT", "wikistruct/1.0"),
		MaxRedirects:  envInt("MAX_REDIRECTS", 3),
		FetchDelay:    envDuration("FETCH_DELAY", 2*time.Second),

		DataDir:   envOr("DATA_DIR", "data/pages"),
		DBPath:    envOr("DB_PATH", "data/wikistruct.db"),
		KindsFile: os.Getenv("KINDS_FILE"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = 3
	}
	if cfg.FetchDelay < 0 {
		cfg.FetchDelay = 2 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("WIKISTRUCT_API_KEY is required")
	}
	if c.WikiAPIURL == "" {
		return fmt.Errorf("WIKI_API_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
