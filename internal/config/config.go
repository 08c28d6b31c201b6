package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete ghscout configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	GitHub    GitHubConfig    `json:"github" mapstructure:"github"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Search    SearchConfig    `json:"search" mapstructure:"search"`
	RepoMap   RepoMapConfig   `json:"repoMap" mapstructure:"repoMap"`
	RateLimit RateLimitConfig `json:"rateLimit" mapstructure:"rateLimit"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// GitHubConfig contains API client configuration
type GitHubConfig struct {
	Token      string `json:"token,omitempty" mapstructure:"token"`
	APIBaseURL string `json:"apiBaseUrl" mapstructure:"apiBaseUrl"`
	TimeoutMs  int    `json:"timeoutMs" mapstructure:"timeoutMs"`
	MaxRetries int    `json:"maxRetries" mapstructure:"maxRetries"`
}

// CacheConfig contains cache directory and TTL configuration
type CacheConfig struct {
	Dir                   string `json:"dir" mapstructure:"dir"`
	SearchTtlSeconds      int    `json:"searchTtlSeconds" mapstructure:"searchTtlSeconds"`
	RepoMapTtlSeconds     int    `json:"repoMapTtlSeconds" mapstructure:"repoMapTtlSeconds"`
	LicenseTtlSeconds     int    `json:"licenseTtlSeconds" mapstructure:"licenseTtlSeconds"`
	MemoryMaxEntries      int    `json:"memoryMaxEntries" mapstructure:"memoryMaxEntries"`
	MemoryEntryTtlSeconds int    `json:"memoryEntryTtlSeconds" mapstructure:"memoryEntryTtlSeconds"`
}

// SearchConfig contains code search configuration
type SearchConfig struct {
	MaxResults         int      `json:"maxResults" mapstructure:"maxResults"`
	SupportedLanguages []string `json:"supportedLanguages" mapstructure:"supportedLanguages"`
}

// RepoMapConfig contains repository map configuration
type RepoMapConfig struct {
	MaxFiles   int `json:"maxFiles" mapstructure:"maxFiles"`
	MaxSymbols int `json:"maxSymbols" mapstructure:"maxSymbols"`
}

// RateLimitConfig contains the two API budget tiers
type RateLimitConfig struct {
	GeneralPerHour  int    `json:"generalPerHour" mapstructure:"generalPerHour"`
	SearchPerMinute int    `json:"searchPerMinute" mapstructure:"searchPerMinute"`
	StatePath       string `json:"statePath" mapstructure:"statePath"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			TimeoutMs:  30000,
			MaxRetries: 3,
		},
		Cache: CacheConfig{
			Dir:                   defaultCacheDir(),
			SearchTtlSeconds:      3600,
			RepoMapTtlSeconds:     86400,
			LicenseTtlSeconds:     604800,
			MemoryMaxEntries:      256,
			MemoryEntryTtlSeconds: 300,
		},
		Search: SearchConfig{
			MaxResults:         10,
			SupportedLanguages: []string{"python", "javascript", "typescript", "go"},
		},
		RepoMap: RepoMapConfig{
			MaxFiles:   100,
			MaxSymbols: 50,
		},
		RateLimit: RateLimitConfig{
			GeneralPerHour:  5000,
			SearchPerMinute: 30,
			StatePath:       filepath.Join(defaultCacheDir(), "rate_limit.json"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ghscout"
	}
	return filepath.Join(home, ".ghscout")
}

// LoadConfig loads configuration from <dir>/.ghscout/config.json with
// GHSCOUT_* and GITHUB_TOKEN environment overrides.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("github.apiBaseUrl", defaults.GitHub.APIBaseURL)
	v.SetDefault("github.timeoutMs", defaults.GitHub.TimeoutMs)
	v.SetDefault("github.maxRetries", defaults.GitHub.MaxRetries)
	v.SetDefault("cache.dir", defaults.Cache.Dir)
	v.SetDefault("cache.searchTtlSeconds", defaults.Cache.SearchTtlSeconds)
	v.SetDefault("cache.repoMapTtlSeconds", defaults.Cache.RepoMapTtlSeconds)
	v.SetDefault("cache.licenseTtlSeconds", defaults.Cache.LicenseTtlSeconds)
	v.SetDefault("cache.memoryMaxEntries", defaults.Cache.MemoryMaxEntries)
	v.SetDefault("cache.memoryEntryTtlSeconds", defaults.Cache.MemoryEntryTtlSeconds)
	v.SetDefault("search.maxResults", defaults.Search.MaxResults)
	v.SetDefault("search.supportedLanguages", defaults.Search.SupportedLanguages)
	v.SetDefault("repoMap.maxFiles", defaults.RepoMap.MaxFiles)
	v.SetDefault("repoMap.maxSymbols", defaults.RepoMap.MaxSymbols)
	v.SetDefault("rateLimit.generalPerHour", defaults.RateLimit.GeneralPerHour)
	v.SetDefault("rateLimit.searchPerMinute", defaults.RateLimit.SearchPerMinute)
	v.SetDefault("rateLimit.statePath", defaults.RateLimit.StatePath)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(dir, ".ghscout"))

	v.SetEnvPrefix("GHSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", "GITHUB_TOKEN", "GHSCOUT_GITHUB_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, env and defaults still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <dir>/.ghscout/config.json.
// The token is never written to disk.
func (c *Config) Save(dir string) error {
	configDir := filepath.Join(dir, ".ghscout")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	clone := *c
	clone.GitHub.Token = ""

	data, err := json.MarshalIndent(&clone, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.GitHub.Token != "" && !validTokenPrefix(c.GitHub.Token) {
		return &ConfigError{Field: "github.token", Message: "token must start with ghp_, github_pat_, or gho_"}
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 30 {
		return &ConfigError{Field: "search.maxResults", Message: "must be between 1 and 30"}
	}
	if c.RepoMap.MaxFiles < 1 {
		return &ConfigError{Field: "repoMap.maxFiles", Message: "must be positive"}
	}
	if c.RepoMap.MaxSymbols < 1 {
		return &ConfigError{Field: "repoMap.maxSymbols", Message: "must be positive"}
	}
	if c.Cache.SearchTtlSeconds < 0 || c.Cache.RepoMapTtlSeconds < 0 || c.Cache.LicenseTtlSeconds < 0 {
		return &ConfigError{Field: "cache", Message: "TTLs must not be negative"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

func validTokenPrefix(token string) bool {
	for _, prefix := range []string{"ghp_", "github_pat_", "gho_"} {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
