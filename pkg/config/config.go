package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Data layout
	DataDir  string `mapstructure:"DATA_DIR"`
	ModelDir string `mapstructure:"MODEL_DIR"`

	// NBA stats API
	Season           string        `mapstructure:"SEASON"`
	SeasonType       string        `mapstructure:"SEASON_TYPE"`
	StatsAPITimeout  time.Duration `mapstructure:"STATS_API_TIMEOUT"`
	StatsRequestGap  time.Duration `mapstructure:"STATS_REQUEST_GAP"`
	CircuitThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Comparison lines
	LinesURL       string `mapstructure:"LINES_URL"`
	UseSampleLines bool   `mapstructure:"USE_SAMPLE_LINES"`

	// Background refresh
	EnableBackgroundJobs bool   `mapstructure:"ENABLE_BACKGROUND_JOBS"`
	DataFetchInterval    string `mapstructure:"DATA_FETCH_INTERVAL"`

	// Model defaults
	DefaultModelKind string `mapstructure:"DEFAULT_MODEL_KIND"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "file:data/courtside.db")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("MODEL_DIR", "data/models")
	viper.SetDefault("SEASON", "") // empty = resolve from wall clock
	viper.SetDefault("SEASON_TYPE", "Regular Season")
	viper.SetDefault("STATS_API_TIMEOUT", "30s")
	viper.SetDefault("STATS_REQUEST_GAP", "1200ms")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("LINES_URL", "")
	viper.SetDefault("USE_SAMPLE_LINES", true)
	viper.SetDefault("ENABLE_BACKGROUND_JOBS", false)
	viper.SetDefault("DATA_FETCH_INTERVAL", "2h")
	viper.SetDefault("DEFAULT_MODEL_KIND", "random_forest")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
