package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pders01/torrentdrop/internal/bot"
	"github.com/pders01/torrentdrop/internal/config"
	"github.com/pders01/torrentdrop/internal/debuglog"
	"github.com/pders01/torrentdrop/internal/download"
	"github.com/pders01/torrentdrop/internal/feed"
	"github.com/pders01/torrentdrop/internal/storage"
	"github.com/pders01/torrentdrop/internal/telegram"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	var (
		dbPath         = flag.String("db", "", "Path to database file (overrides config)")
		watchFolder    = flag.String("watch", "", "Path to the watch folder (overrides config)")
		configPath     = flag.String("config", "", "Path to configuration file")
		generateConfig = flag.Bool("generate-config", false, "Generate default config file")
		version        = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("torrentdrop %s\n", Version)
		fmt.Println("Telegram torrent drop bot")
		fmt.Println("github.com/pders01/torrentdrop")
		return
	}

	if *generateConfig {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "torrentdrop", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *watchFolder != "" {
		cfg.Watch.Folder = *watchFolder
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer debuglog.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	store, err := storage.NewStore(cfg.Storage.Path, cfg.Feed.MaxFeeds)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	downloader, err := download.NewDownloader(cfg.Watch.Folder, cfg.Feed.HTTPTimeout, cfg.Feed.UserAgent)
	if err != nil {
		log.Fatal(err)
	}

	fetcher := feed.NewFetcher(cfg.Feed.HTTPTimeout, cfg.Feed.UserAgent)

	client, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		log.Fatal(err)
	}

	b := bot.New(client, store, fetcher, downloader, bot.Options{
		AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
		PageSize:       cfg.Feed.PageSize,
		MaxFeeds:       cfg.Feed.MaxFeeds,
		BatchTimeout:   cfg.Batch.Timeout,
	})
	// Pending upload batches still get their summary on the way out
	defer b.Flush()

	if err := b.RegisterCommands(); err != nil {
		debuglog.Warnf("registering command menu: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debuglog.Infof("torrentdrop %s starting as @%s", Version, client.Username())
	fmt.Printf("torrentdrop %s running as @%s\n", Version, client.Username())

	if err := client.Run(ctx, b); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
