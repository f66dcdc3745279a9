package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
}

type TelegramConfig struct {
	Token          string  `mapstructure:"token"`
	AllowedChatIDs []int64 `mapstructure:"allowed_chat_ids"`
}

type StorageConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WatchConfig struct {
	Folder string `mapstructure:"folder"`
}

type FeedConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	PageSize    int           `mapstructure:"page_size"`
	MaxFeeds    int           `mapstructure:"max_feeds"`
}

type BatchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Telegram: TelegramConfig{},
		Storage: StorageConfig{
			Path:    filepath.Join(homeDir, ".torrentdrop", "feeds.db"),
			Timeout: 1 * time.Second,
		},
		Watch: WatchConfig{
			Folder: "/watch",
		},
		Feed: FeedConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "torrentdrop/1.0 (https://github.com/pders01/torrentdrop)",
			PageSize:    15,
			MaxFeeds:    10,
		},
		Batch: BatchConfig{
			Timeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "INFO",
			Path:  "",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("telegram", cfg.Telegram)
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("watch", cfg.Watch)
	v.SetDefault("feed", cfg.Feed)
	v.SetDefault("batch", cfg.Batch)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "torrentdrop")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TORRENTDROP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// Validate checks the settings a running bot cannot do without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (TORRENTDROP_TELEGRAM_TOKEN)")
	}
	if len(c.Telegram.AllowedChatIDs) == 0 {
		return fmt.Errorf("telegram.allowed_chat_ids is required")
	}
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be at least 1")
	}
	if c.Feed.MaxFeeds < 1 {
		return fmt.Errorf("feed.max_feeds must be at least 1")
	}
	if c.Batch.Timeout <= 0 {
		return fmt.Errorf("batch.timeout must be positive")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// expandPaths expands all paths in the config
func expandPaths(cfg *Config) {
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Watch.Folder = expandPath(cfg.Watch.Folder)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Convert durations to strings for TOML readability
	storageCfg := map[string]interface{}{
		"path":    config.Storage.Path,
		"timeout": config.Storage.Timeout.String(),
	}

	feedCfg := map[string]interface{}{
		"http_timeout": config.Feed.HTTPTimeout.String(),
		"user_agent":   config.Feed.UserAgent,
		"page_size":    config.Feed.PageSize,
		"max_feeds":    config.Feed.MaxFeeds,
	}

	batchCfg := map[string]interface{}{
		"timeout": config.Batch.Timeout.String(),
	}

	v.Set("telegram", config.Telegram)
	v.Set("storage", storageCfg)
	v.Set("watch", config.Watch)
	v.Set("feed", feedCfg)
	v.Set("batch", batchCfg)
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
