package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:          "test-token",
			AllowedChatIDs: []int64{42},
		},
		Storage: StorageConfig{
			Path:    "", // Callers point this at a temp dir
			Timeout: 1 * time.Second,
		},
		Watch: WatchConfig{
			Folder: "",
		},
		Feed: FeedConfig{
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "torrentdrop-test/1.0",
			PageSize:    15,
			MaxFeeds:    10,
		},
		Batch: BatchConfig{
			Timeout: 50 * time.Millisecond,
		},
		Log: defaultConfig().Log,
	}
}
