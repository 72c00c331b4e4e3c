package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNinjasBaseURL = "https://api.api-ninjas.com"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config holds runtime configuration shared across the application. It is
// built once at startup and handed to each collaborator's constructor.
type Config struct {
	Addr                 string
	MongoURI             string
	MongoDatabase        string
	RestaurantCollection string
	Timeout              time.Duration
	APIKey               string
	NinjasBaseURL        string
	UpstreamTimeout      time.Duration
	AllowedOrigins       []string
	Logging              LoggingConfig
}

// Load reads .env files and environment variables and returns a fully
// populated Config. A missing database URL or API key is an error.
func Load() (*Config, error) {
	loadEnvFile()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":4000")
	v.SetDefault("MONGO_DB", "restaurantes")
	v.SetDefault("RESTAURANT_COLLECTION", "restaurants")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("NINJAS_BASE_URL", defaultNinjasBaseURL)
	v.SetDefault("UPSTREAM_TIMEOUT", time.Duration(0))
	v.SetDefault("API_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	return v
}

// LoadStore is Load for tools that only talk to Mongo: API_KEY is not
// required. envFiles are loaded with godotenv before the default .env lookup.
func LoadStore(envFiles ...string) (*Config, error) {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	loadEnvFile()

	cfg := build(newViper())
	if err := validateStore(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := build(v)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func build(v *viper.Viper) *Config {
	mongoURI := strings.TrimSpace(v.GetString("MONGO_URL"))
	if mongoURI == "" {
		mongoURI = strings.TrimSpace(v.GetString("MONGO_URI"))
	}

	cfg := &Config{
		Addr:                 strings.TrimSpace(v.GetString("HTTP_ADDR")),
		MongoURI:             mongoURI,
		MongoDatabase:        strings.TrimSpace(v.GetString("MONGO_DB")),
		RestaurantCollection: strings.TrimSpace(v.GetString("RESTAURANT_COLLECTION")),
		Timeout:              v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		APIKey:               strings.TrimSpace(v.GetString("API_KEY")),
		NinjasBaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("NINJAS_BASE_URL")), "/"),
		UpstreamTimeout:      v.GetDuration("UPSTREAM_TIMEOUT"),
		AllowedOrigins:       parseList(v.GetString("API_ALLOWED_ORIGINS"), []string{"*"}),
		Logging: LoggingConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		},
	}

	if cfg.NinjasBaseURL == "" {
		cfg.NinjasBaseURL = defaultNinjasBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UpstreamTimeout < 0 {
		cfg.UpstreamTimeout = 0
	}
	return cfg
}

func validateConfig(cfg *Config) error {
	if err := validateStore(cfg); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API_KEY must be configured")
	}
	return nil
}

func validateStore(cfg *Config) error {
	if cfg.MongoURI == "" {
		return fmt.Errorf("MONGO_URL must be configured")
	}
	if cfg.MongoDatabase == "" || cfg.RestaurantCollection == "" {
		return fmt.Errorf("MONGO_DB and RESTAURANT_COLLECTION must not be empty")
	}
	return nil
}

// loadEnvFile loads the first .env found between the working directory and
// the module root. Variables already present in the environment win.
func loadEnvFile() {
	possiblePaths := []string{".env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func parseList(raw string, fallback []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
