package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weekly-report-bot",
	Short: "Generate weekly contributor reports from GitHub activity",
	Long: `weekly-report-bot summarizes a week of GitHub activity for a repository, or for
one contributor in it. It fetches commits, issues and discussions, summarizes
each item with a chat-completion model, and merges the summaries into a single
narrative report. Reports are printed by the generate command or served over
Telegram by the bot command.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior - show help
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// Flags shared by generate and bot
var (
	sinceDays   int
	concurrency int
	provider    string
	verbose     bool
	quiet       bool
)

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sinceDays, "since-days", 0, "Number of days to look back (default: REPORT_SINCE_DAYS or 7)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of concurrent item summaries (default: REPORT_CONCURRENCY or 4)")
	cmd.Flags().StringVar(&provider, "provider", "", "Completion provider: ghmodels or openai (default: REPORT_PROVIDER or ghmodels)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose progress output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress all progress output")
}
