// Package main is the issuelens CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/issuelens/issuelens/internal/cache"
	"github.com/issuelens/issuelens/internal/cli"
	"github.com/issuelens/issuelens/internal/config"
	"github.com/issuelens/issuelens/internal/github"
	"github.com/issuelens/issuelens/internal/service"
	"github.com/issuelens/issuelens/internal/summarize"
	"github.com/issuelens/issuelens/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/issuelens/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "analyze":
		runAnalyze()
	case "cache":
		runCache()
	case "health":
		runHealth()
	case "version", "--version", "-v":
		fmt.Printf("issuelens version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func parseFormat(name string) cli.OutputFormat {
	switch name {
	case "json":
		return cli.OutputJSON
	case "text":
		return cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", name)
		os.Exit(1)
		return cli.OutputText
	}
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	page := fs.Int("page", 1, "page of issues to analyze")
	perPage := fs.Int("per-page", 10, "issues per page (max 100)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printAnalyzeUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		printAnalyzeUsage(fs)
		os.Exit(1)
	}
	repoURL := fs.Arg(0)
	format := parseFormat(*outputFormat)

	components, logger := mustInitialize(*configPath, *debug)
	defer components.Close()
	defer logger.Sync()

	result, err := components.Analyzer.AnalyzeRepository(context.Background(), repoURL, *page, *perPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnalysis(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runCache() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: issuelens cache <clear|stats> [flags]")
		os.Exit(1)
	}
	sub := os.Args[2]

	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[3:])
	format := parseFormat(*outputFormat)

	components, logger := mustInitialize(*configPath, false)
	defer components.Close()
	defer logger.Sync()

	switch sub {
	case "clear":
		if !components.Analyzer.ClearCache(context.Background()) {
			fmt.Fprintln(os.Stderr, "Cache clear failed")
			os.Exit(1)
		}
		fmt.Println("Cache cleared")
	case "stats":
		if err := cli.WriteStats(os.Stdout, components.Analyzer.CacheStats(), format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown cache subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	components, logger := mustInitialize(*configPath, false)
	defer components.Close()
	defer logger.Sync()

	health := components.Analyzer.CheckHealth(context.Background())
	healthy, err := cli.WriteHealth(os.Stdout, health, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if !healthy {
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store    cache.Store
	Analyzer *service.Analyzer
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func mustInitialize(configPath string, debug bool) (*Components, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return components, logger
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := cache.OpenStore(cfg.Cache.Backend, cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	ttl := time.Duration(cfg.Cache.DefaultTTLSeconds) * time.Second
	memo := cache.New(store,
		cache.WithLogger(logger),
		cache.WithDefaultTTL(ttl),
	)

	client := github.NewClient(cfg.GitHub.Token,
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithTimeout(time.Duration(cfg.GitHub.TimeoutSeconds)*time.Second),
		github.WithClientLogger(logger),
	)

	summarizer := summarize.New(cfg.Summary.MaxLength, cfg.Summary.MinLength,
		summarize.WithLogger(logger),
	)

	analyzer := service.New(client, summarizer, memo,
		service.WithBatchSize(cfg.Summary.BatchSize),
		service.WithTTL(ttl),
		service.WithKeyPrefix(cfg.Cache.KeyPrefix),
		service.WithLogger(logger),
	)

	return &Components{
		Store:    store,
		Analyzer: analyzer,
	}, nil
}

func printAnalyzeUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: issuelens analyze [flags] <repository-url>\n\n")
	fmt.Fprintf(fs.Output(), "The repository URL must be of the form https://github.com/<owner>/<repo>.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  issuelens analyze https://github.com/golang/go
  issuelens analyze -page 2 -per-page 25 https://github.com/golang/go
  issuelens analyze -output json https://github.com/golang/go
`)
}

func printUsage() {
	fmt.Println(`issuelens - GitHub issue summarizer

Usage:
  issuelens analyze [flags] <repository-url>   Fetch and summarize repository issues
  issuelens cache stats [flags]                Show cache hit/miss counters
  issuelens cache clear [flags]                Drop all cached results
  issuelens health [flags]                     Probe GitHub, summarizer, and cache
  issuelens version                            Show version
  issuelens help                               Show this help

Analyze Flags:
  --config string    Config file path (default: /usr/local/etc/issuelens/config.yaml)
  --page int         Page of issues to analyze (default: 1)
  --per-page int     Issues per page, max 100 (default: 10)
  --output string    Output format: text or json (default: text)
  --debug            Enable debug logging

Cache / Health Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

A GitHub token is read from the github.token config key or the GITHUB_TOKEN
environment variable (a .env file in the working directory is honored).
Unauthenticated requests work but are heavily rate limited.

Examples:
  issuelens analyze https://github.com/golang/go
  issuelens analyze -per-page 25 -output json https://github.com/golang/go
  issuelens cache stats
  issuelens health`)
}
