package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ideas "github.com/vivaneiona/reddit-ideas"
)

// Config holds everything the commands need from the environment.
type Config struct {
	GeminiAPIKey          string        `mapstructure:"gemini_api_key"`
	GeminiBaseURL         string        `mapstructure:"gemini_base_url"`
	GoogleSheetID         string        `mapstructure:"google_sheet_id"`
	GoogleCredentialsPath string        `mapstructure:"google_application_credentials"`
	SheetRange            string        `mapstructure:"sheet_range"`
	SheetHeader           bool          `mapstructure:"sheet_header"`
	HTTPTimeout           time.Duration `mapstructure:"http_timeout"`
	Models                []string      `mapstructure:"models"`
	RedditRPS             float64       `mapstructure:"reddit_rps"`
	LogLevel              string        `mapstructure:"log_level"`
	ListenAddr            string        `mapstructure:"listen_addr"`
}

// envBindings maps config keys to the unprefixed variables users already set.
var envBindings = map[string][]string{
	"gemini_api_key":                 {"GEMINI_API_KEY"},
	"google_sheet_id":                {"GOOGLE_SHEET_ID"},
	"google_application_credentials": {"GOOGLE_APPLICATION_CREDENTIALS"},
}

// LoadConfig reads an optional .env file, an optional config file and the
// environment. REDDIT_IDEAS_* variables override everything else.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("sheet_range", "Sheet1!A:J")
	v.SetDefault("sheet_header", false)
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("reddit_rps", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config %s: %v", ideas.ErrIO, path, err)
		}
	}

	v.SetEnvPrefix("REDDIT_IDEAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key, "REDDIT_IDEAS_" + strings.ToUpper(key)}, envs...)...)
	}
	_ = v.BindEnv("listen_addr", "REDDIT_IDEAS_LISTEN_ADDR", "PORT")
	_ = v.BindEnv("models")
	_ = v.BindEnv("gemini_base_url")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", ideas.ErrInvalidInput, err)
	}
	if !strings.Contains(cfg.ListenAddr, ":") {
		cfg.ListenAddr = ":" + cfg.ListenAddr
	}
	cfg.Models = splitModels(cfg.Models)
	return &cfg, nil
}

// splitModels accepts both list values and a single comma-separated string.
func splitModels(in []string) []string {
	var out []string
	for _, item := range in {
		for _, m := range strings.Split(item, ",") {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}

// Validate fails fast when the model API key is missing.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY must be set in environment")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// SheetsEnabled reports whether both the sheet ID and credentials are configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSheetID != "" && c.GoogleCredentialsPath != ""
}

// ModelChain returns the configured fallback chain or the default one.
func (c *Config) ModelChain() []ideas.Model {
	if len(c.Models) == 0 {
		return ideas.DefaultModels
	}
	models := make([]ideas.Model, len(c.Models))
	for i, m := range c.Models {
		models[i] = ideas.Model(m)
	}
	return models
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
