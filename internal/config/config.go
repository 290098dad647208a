// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port            string  `mapstructure:"PORT"`
	Env             string  `mapstructure:"APP_ENV"`
	LogLevel        string  `mapstructure:"LOG_LEVEL"`
	DBHost          string  `mapstructure:"DB_HOST"`
	DBPort          string  `mapstructure:"DB_PORT"`
	DBUser          string  `mapstructure:"DB_USER"`
	DBPassword      string  `mapstructure:"DB_PASSWORD"`
	DBName          string  `mapstructure:"DB_NAME"`
	DBSSLMode       string  `mapstructure:"DB_SSLMODE"`
	RedisURL        string  `mapstructure:"REDIS_URL"`
	SessionUserID   string  `mapstructure:"SESSION_USER_ID"`
	AllowedOrigins  string  `mapstructure:"ALLOWED_ORIGINS"`
	ProfanityWords  string  `mapstructure:"PROFANITY_WORDS"`
	Placeholder     string  `mapstructure:"PLACEHOLDER"`
	FeatureFlags    string  `mapstructure:"FEATURE_FLAGS"`
	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	SamplerRatio    float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8390")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "islandmarket")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("SESSION_USER_ID", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006")
	viper.SetDefault("PROFANITY_WORDS", "")
	viper.SetDefault("PLACEHOLDER", "□")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if utf8.RuneCountInString(c.Placeholder) != 1 {
		return errors.New("PLACEHOLDER must be exactly one character")
	}
	if c.SamplerRatio < 0 || c.SamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}
	if c.TracingEnabled && c.TracingExporter == "otlp" && c.OTLPEndpoint == "" {
		return errors.New("OTLP_ENDPOINT is required when TRACING_EXPORTER is otlp")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction && c.DBHost != "" {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be disabled in production")
		}
	}
	if isProduction && c.AllowedOrigins == "*" {
		log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
	}

	return nil
}

// DatabaseEnabled reports whether a backend mirror database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// ExtraProfanityWords splits PROFANITY_WORDS into trimmed, non-empty words.
func (c *Config) ExtraProfanityWords() []string {
	var out []string
	for _, w := range strings.Split(c.ProfanityWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// PlaceholderRune returns the configured placeholder character.
func (c *Config) PlaceholderRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Placeholder)
	return r
}
