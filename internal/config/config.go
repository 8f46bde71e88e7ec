package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Assets   AssetsConfig
	Logging  LoggingConfig

	// ProvidersFile optionally points to a YAML file with additional
	// provider descriptors; the built-in providers are always loaded.
	ProvidersFile string
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	// Listing exhaustion bounds.
	ScrollIterations int
	ScrollPause      time.Duration
	LoadMoreMax      int
	LoadMorePause    time.Duration
	LoadMoreWait     time.Duration
	ListingWait      time.Duration

	// Static fetches.
	DetailTimeout time.Duration

	// Politeness pauses.
	ProductPause time.Duration
	AssetPause   time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	ProfileRoot    string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

type RedisConfig struct {
	Addr          string
	Stream        string
	RelayInterval time.Duration
	RelayBatch    int
}

type AssetsConfig struct {
	// Root is the directory downloaded media is stored under, laid out
	// as root/provider/category/filename.
	Root string
	// PublicPath is the URL prefix the API serves Root under.
	PublicPath string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 10*time.Minute),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			ScrollIterations: getIntOrDefault("SCRAPER_SCROLL_ITERATIONS", 12),
			ScrollPause:      getDurationOrDefault("SCRAPER_SCROLL_PAUSE", 500*time.Millisecond),
			LoadMoreMax:      getIntOrDefault("SCRAPER_LOAD_MORE_MAX", 50),
			LoadMorePause:    getDurationOrDefault("SCRAPER_LOAD_MORE_PAUSE", time.Second),
			LoadMoreWait:     getDurationOrDefault("SCRAPER_LOAD_MORE_WAIT", 5*time.Second),
			ListingWait:      getDurationOrDefault("SCRAPER_LISTING_WAIT", 15*time.Second),
			DetailTimeout:    getDurationOrDefault("SCRAPER_DETAIL_TIMEOUT", 10*time.Second),
			ProductPause:     getDurationOrDefault("SCRAPER_PRODUCT_PAUSE", 500*time.Millisecond),
			AssetPause:       getDurationOrDefault("SCRAPER_ASSET_PAUSE", 200*time.Millisecond),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			ProfileRoot:    getEnvOrDefault("BROWSER_PROFILE_ROOT", ""),
		},
		Database: DatabaseConfig{
			Host:        getEnvOrDefault("DB_HOST", "localhost"),
			Port:        getIntOrDefault("DB_PORT", 5432),
			User:        getEnvOrDefault("DB_USER", "postgres"),
			Password:    getEnvOrDefault("DB_PASSWORD", ""),
			DBName:      getEnvOrDefault("DB_NAME", "storefront_scraper"),
			SSLMode:     getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns:    int32(getIntOrDefault("DB_MAX_CONNS", 10)),
			MinConns:    int32(getIntOrDefault("DB_MIN_CONNS", 2)),
			MaxConnLife: getDurationOrDefault("DB_MAX_CONN_LIFE", time.Hour),
			MaxConnIdle: getDurationOrDefault("DB_MAX_CONN_IDLE", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:          getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Stream:        getEnvOrDefault("REDIS_STREAM", "stream:catalog_ingest"),
			RelayInterval: getDurationOrDefault("REDIS_RELAY_INTERVAL", 5*time.Second),
			RelayBatch:    getIntOrDefault("REDIS_RELAY_BATCH", 100),
		},
		Assets: AssetsConfig{
			Root:       getEnvOrDefault("ASSETS_ROOT", "product_assets"),
			PublicPath: getEnvOrDefault("ASSETS_PUBLIC_PATH", "/assets"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		ProvidersFile: getEnvOrDefault("PROVIDERS_FILE", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.ScrollIterations < 1 {
		return fmt.Errorf("SCRAPER_SCROLL_ITERATIONS must be at least 1")
	}

	if c.Scraper.LoadMoreMax < 1 {
		return fmt.Errorf("SCRAPER_LOAD_MORE_MAX must be at least 1")
	}

	if c.Assets.Root == "" {
		return fmt.Errorf("ASSETS_ROOT must not be empty")
	}

	if c.Redis.RelayBatch < 1 {
		return fmt.Errorf("REDIS_RELAY_BATCH must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
