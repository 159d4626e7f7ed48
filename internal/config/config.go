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

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Summary    Summary    `mapstructure:"summary"`
	Evaluation Evaluation `mapstructure:"evaluation"`
	Server     Server     `mapstructure:"server"`
	Store      Store      `mapstructure:"store"`
	Cache      Cache      `mapstructure:"cache"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	MaxAttempts int     `mapstructure:"max_attempts"`
}

// Summary holds narrative summary settings
type Summary struct {
	DefaultTotal int `mapstructure:"default_total"`
}

// Evaluation holds evaluation harness settings
type Evaluation struct {
	Workers        int    `mapstructure:"workers"`
	Repeats        int    `mapstructure:"repeats"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	AttemptTimeout string `mapstructure:"attempt_timeout"`
	OutputDir      string `mapstructure:"output_dir"`
	Endpoint       string `mapstructure:"endpoint"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string    `mapstructure:"host"`
	Port           int       `mapstructure:"port"`
	ReadTimeout    string    `mapstructure:"read_timeout"`
	WriteTimeout   string    `mapstructure:"write_timeout"`
	APIKey         string    `mapstructure:"api_key"`
	AllowedOrigins []string  `mapstructure:"allowed_origins"`
	RateLimit      RateLimit `mapstructure:"rate_limit"`
}

// RateLimit holds per-client request limits
type RateLimit struct {
	Requests int    `mapstructure:"requests"`
	Window   string `mapstructure:"window"`
}

// Store holds document store configuration
type Store struct {
	Driver     string `mapstructure:"driver"`
	MongoURI   string `mapstructure:"mongo_uri"`
	Database   string `mapstructure:"database"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Cache holds Redis configuration. An empty address keeps rate limiting in process.
type Cache struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".trailhead")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error processing config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the loaded configuration, loading defaults on first use.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".trailhead")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 2048)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max_attempts", 3)

	// Summary defaults
	viper.SetDefault("summary.default_total", 2200)

	// Evaluation defaults
	viper.SetDefault("evaluation.workers", 2)
	viper.SetDefault("evaluation.repeats", 3)
	viper.SetDefault("evaluation.max_attempts", 2)
	viper.SetDefault("evaluation.attempt_timeout", "90s")
	viper.SetDefault("evaluation.output_dir", "evaluations")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.rate_limit.requests", 10)
	viper.SetDefault("server.rate_limit.window", "1m")

	// Store defaults
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.database", "trailhead")
	viper.SetDefault("store.sqlite_path", ".trailhead/trailhead.db")

	// Cache defaults
	viper.SetDefault("cache.redis_db", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("server.api_key", []string{
		"TRAILHEAD_API_KEY",
		"API_KEY",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("store.mongo_uri", []string{
		"MONGO_URI",
		"MONGODB_URI",
	})

	bindEnvKeys("cache.redis_addr", []string{
		"REDIS_ADDR",
		"REDIS_URL",
	})

	bindEnvKeys("cache.redis_password", []string{
		"REDIS_PASSWORD",
	})

	bindEnvKeys("evaluation.endpoint", []string{
		"EVAL_ENDPOINT",
		"TRAILHEAD_EVAL_ENDPOINT",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"TRAILHEAD_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Evaluation.OutputDir != "" {
		config.Evaluation.OutputDir = expandPath(config.Evaluation.OutputDir)
	}
	if config.Store.SQLitePath != "" {
		config.Store.SQLitePath = expandPath(config.Store.SQLitePath)
	}
	config.Evaluation.Endpoint = strings.TrimRight(config.Evaluation.Endpoint, "/")

	// Validate durations
	durations := map[string]string{
		"ai.gemini.timeout":          config.AI.Gemini.Timeout,
		"evaluation.attempt_timeout": config.Evaluation.AttemptTimeout,
		"server.read_timeout":        config.Server.ReadTimeout,
		"server.write_timeout":       config.Server.WriteTimeout,
		"server.rate_limit.window":   config.Server.RateLimit.Window,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// Validate ensures the configuration needed by the given commands is present.
// needsLLM is false for commands that only talk to a running server.
func (c *Config) Validate(needsLLM bool) error {
	var errors []string

	if needsLLM && c.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.")
	}

	switch c.Store.Driver {
	case "memory", "sqlite":
	case "mongo":
		if c.Store.MongoURI == "" {
			errors = append(errors, "MongoDB store requires a URI. Set MONGO_URI or store.mongo_uri")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store driver: %s. Supported: memory, sqlite, mongo", c.Store.Driver))
	}

	if c.Summary.DefaultTotal < 900 || c.Summary.DefaultTotal > 2800 {
		errors = append(errors, fmt.Sprintf("summary.default_total must be between 900 and 2800, got %d", c.Summary.DefaultTotal))
	}
	if c.Evaluation.Workers < 1 {
		errors = append(errors, "evaluation.workers must be at least 1")
	}
	if c.Server.RateLimit.Requests < 1 {
		errors = append(errors, "server.rate_limit.requests must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a duration validated during Load, falling back to def.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetApp() App               { return Get().App }
func GetAI() AI                 { return Get().AI }
func GetEvaluation() Evaluation { return Get().Evaluation }
func GetServer() Server         { return Get().Server }
func GetStore() Store           { return Get().Store }
func GetCache() Cache           { return Get().Cache }
func GetLogging() Logging       { return Get().Logging }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string  { return Get().AI.Gemini.Model }
func IsDebugMode() bool       { return Get().App.Debug }

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
