package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Browser   BrowserConfig
	LLM       LLMConfig
	Firecrawl FirecrawlConfig
	Import    ImportConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
}

type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// FirecrawlConfig points at a Firecrawl deployment. When BaseURL is
// empty the local playwright browser renders pages instead.
type FirecrawlConfig struct {
	BaseURL string
	APIKey  string
	WaitFor time.Duration
}

// ImportConfig holds the landed-cost parameters for imports into Brazil.
type ImportConfig struct {
	DefaultExchangeRate float64
	ImportTaxRate       float64
	ShippingFee         float64
	HandlingFee         float64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	RateTTL     time.Duration
	AnalysisTTL time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local development.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			RateLimitMin: getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 2*time.Second),
			RateLimitMax: getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 6*time.Second),
			MaxRetries:   getIntOrDefault("SCRAPER_MAX_RETRIES", 3),
			RetryDelay:   getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "pt-BR,pt;q=0.9,es;q=0.8,en;q=0.7"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/Sao_Paulo"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "pt-BR"),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
		},
		LLM: LLMConfig{
			BaseURL: getEnvOrDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:  getEnvOrDefault("LLM_API_KEY", ""),
			Model:   getEnvOrDefault("LLM_MODEL", "google/gemini-2.0-flash-001"),
			Timeout: getDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		},
		Firecrawl: FirecrawlConfig{
			BaseURL: getEnvOrDefault("FIRECRAWL_BASE_URL", ""),
			APIKey:  getEnvOrDefault("FIRECRAWL_API_KEY", ""),
			WaitFor: getDurationOrDefault("FIRECRAWL_WAIT_FOR", 2*time.Second),
		},
		Import: ImportConfig{
			DefaultExchangeRate: getFloatOrDefault("IMPORT_DEFAULT_EXCHANGE_RATE", 5.5),
			ImportTaxRate:       getFloatOrDefault("IMPORT_TAX_RATE", 0.60),
			ShippingFee:         getFloatOrDefault("IMPORT_SHIPPING_FEE", 50),
			HandlingFee:         getFloatOrDefault("IMPORT_HANDLING_FEE", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "price_scout"),
		},
		Redis: RedisConfig{
			Addr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:    getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:          getIntOrDefault("REDIS_DB", 0),
			RateTTL:     getDurationOrDefault("REDIS_RATE_TTL", time.Hour),
			AnalysisTTL: getDurationOrDefault("REDIS_ANALYSIS_TTL", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN cannot be greater than SCRAPER_RATE_LIMIT_MAX")
	}

	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must be at least 1")
	}

	if c.Import.DefaultExchangeRate <= 0 {
		return fmt.Errorf("IMPORT_DEFAULT_EXCHANGE_RATE must be positive")
	}

	if c.Import.ImportTaxRate < 0 {
		return fmt.Errorf("IMPORT_TAX_RATE cannot be negative")
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

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
