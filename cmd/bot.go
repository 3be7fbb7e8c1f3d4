package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Attamusc/weekly-report-bot/internal/bot"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve weekly reports over Telegram",
	Long: `Bot long-polls Telegram and answers /weekly_report <owner> <repo> [user] with a
generated report. When TELEGRAM_REPORT_CHAT_ID is set, reports for
REPORT_TARGETS are also posted there on the REPORT_SCHEDULE cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
	addCommonFlags(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid bot configuration: %w", err)
	}

	logger := setupLogger(cfg)
	ctx := context.WithValue(context.Background(), "logger", logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, fetcher, closeCache, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	b, err := bot.New(ctx, cfg, runner, fetcher)
	if err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	logger.Info("Bot started", "window_days", runner.SinceDays())
	if err := b.Start(ctx); err != nil {
		return err
	}
	logger.Info("Bot stopped")
	return nil
}
