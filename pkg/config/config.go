package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Datasets (CVM 월간 보고서)
	Dataset DatasetConfig

	// Market quotes
	Quote QuoteConfig

	// LLM assistant
	LLM LLMConfig

	// Scheduler
	RefreshSchedule string

	// Recommendation policy (YAML)
	PolicyPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Dataset sources
const (
	SourceFiles    = "files"
	SourcePostgres = "postgres"
)

// DatasetConfig describes where the CVM monthly datasets live
type DatasetConfig struct {
	Source       string // files, postgres
	DataDir      string
	RegistryPath string
	Years        []int
	CVMBaseURL   string
	ReportsDir   string
}

// QuoteConfig holds market quote settings
type QuoteConfig struct {
	Timeout time.Duration
	Suffix  string
}

// LLMConfig holds chat assistant configuration
type LLMConfig struct {
	Provider       string // openai, anthropic, none
	OpenAIKey      string
	AnthropicKey   string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestsPerMin int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	years, err := parseYears(getEnv("DATASET_YEARS", "2021-2024"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "12h"),
		},

		Dataset: DatasetConfig{
			Source:       getEnv("DATASET_SOURCE", SourceFiles),
			DataDir:      getEnv("DATA_DIR", "data"),
			RegistryPath: getEnv("REGISTRY_PATH", "data/cnpj_fundos.csv"),
			Years:        years,
			CVMBaseURL:   getEnv("CVM_BASE_URL", "https://dados.cvm.gov.br/dataset/fii-doc-inf_mensal"),
			ReportsDir:   getEnv("REPORTS_DIR", "data/reports"),
		},

		Quote: QuoteConfig{
			Timeout: getEnvAsDuration("QUOTE_TIMEOUT", "15s"),
			Suffix:  getEnv("QUOTE_SUFFIX", ".SA"),
		},

		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", "openai"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			Model:          getEnv("LLM_MODEL", ""),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 1000),
			RequestsPerMin: getEnvAsInt("LLM_REQUESTS_PER_MIN", 20),
		},

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 * * *"),
		PolicyPath:      getEnv("POLICY_PATH", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Dataset.Source {
	case SourceFiles:
	case SourcePostgres:
		// postgres 소스는 DATABASE_URL 필수
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATASET_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATASET_SOURCE must be one of: files, postgres")
	}

	switch c.LLM.Provider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of: openai, anthropic, none")
	}

	if c.Quote.Timeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT must be positive")
	}

	return nil
}

// HasDatabase reports whether a Postgres connection is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// parseYears accepts "2022", "2021-2024" or "2021,2023"
func parseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("DATASET_YEARS is required")
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("DATASET_YEARS: invalid year %q", from)
		}
		end, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("DATASET_YEARS: invalid year %q", to)
		}
		if end < start {
			return nil, fmt.Errorf("DATASET_YEARS: range %d-%d is reversed", start, end)
		}
		years := make([]int, 0, end-start+1)
		for y := start; y <= end; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("DATASET_YEARS: invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
