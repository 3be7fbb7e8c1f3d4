package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
	"github.com/Attamusc/weekly-report-bot/internal/cache"
	"github.com/Attamusc/weekly-report-bot/internal/config"
	"github.com/Attamusc/weekly-report-bot/internal/github"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

// loadConfig reads the environment and applies the common flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnvAndFlags(config.Flags{
		SinceDays:   sinceDays,
		Concurrency: concurrency,
		Provider:    provider,
		Verbose:     verbose,
		Quiet:       quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// initCompleter creates the completion provider selected by configuration
func initCompleter(cfg *config.Config, logger *slog.Logger) ai.Completer {
	if cfg.Models.Provider == config.ProviderOpenAI {
		logger.Debug("Using OpenAI provider", "model", cfg.Models.OpenAIModel, "baseURL", cfg.Models.OpenAIBaseURL)
		return ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:     cfg.Models.OpenAIKey,
			BaseURL:    cfg.Models.OpenAIBaseURL,
			Model:      cfg.Models.OpenAIModel,
			Timeout:    cfg.Models.Timeout,
			MaxRetries: 3,
		})
	}
	logger.Debug("Using GitHub Models provider", "model", cfg.Models.Model)
	return ai.NewGHModelsClient(cfg.Models.BaseURL, cfg.Models.Model, cfg.GitHubToken, cfg.Models.Timeout)
}

// initCache creates the summary cache. The returned close function is never
// nil. A nil cache means caching is disabled.
func initCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.SummaryCache, func(), error) {
	noop := func() {}

	if cfg.Cache.Disabled {
		logger.Debug("Summary cache disabled")
		return nil, noop, nil
	}

	if cfg.Cache.RedisURL == "" {
		logger.Debug("Using in-memory summary cache", "ttl", cfg.Cache.TTL)
		return cache.NewMemory(cfg.Cache.TTL), noop, nil
	}

	redisCache, err := cache.DialRedis(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to summary cache: %w", err)
	}
	logger.Debug("Using Redis summary cache", "ttl", cfg.Cache.TTL)
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Warn("Failed to close summary cache", "error", err)
		}
	}, nil
}

// initTokenizer loads the cl100k_base encoding. Without it patches are
// fitted by words.
func initTokenizer(logger *slog.Logger) budget.Tokenizer {
	tok, err := budget.CL100K()
	if err != nil {
		logger.Warn("Tokenizer unavailable, fitting patches by words", "error", err)
		return nil
	}
	return tok
}

// buildRunner wires fetcher, provider, cache and analyzer into a runner
func buildRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...report.RunnerOption) (*report.Runner, *github.Fetcher, func(), error) {
	logger.Debug("Initializing GitHub client")
	fetcher := github.NewFetcherFromToken(ctx, cfg.GitHubToken)

	summaryCache, closeCache, err := initCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	chain := ai.NewChain(initCompleter(cfg, logger)).WithTemperature(cfg.Models.Temperature)

	analyzerOpts := []report.AnalyzerOption{report.WithConcurrency(cfg.Concurrency)}
	if summaryCache != nil {
		analyzerOpts = append(analyzerOpts, report.WithCache(summaryCache))
	}
	analyzer := report.NewAnalyzer(chain, initTokenizer(logger), analyzerOpts...)

	return report.NewRunner(fetcher, analyzer, chain, cfg.SinceDays, opts...), fetcher, closeCache, nil
}

// setupLogger creates a logger configured for progress output
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.Quiet {
		// Discard all log output when quiet
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError + 1, // Higher than any log level to discard all
		}))
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	// Use stderr for progress so stdout stays clean for output
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time stamps for cleaner progress output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
