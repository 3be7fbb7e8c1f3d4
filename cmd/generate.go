package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
	"github.com/Attamusc/weekly-report-bot/internal/format"
	"github.com/Attamusc/weekly-report-bot/internal/input"
	"github.com/Attamusc/weekly-report-bot/internal/report"
	"github.com/spf13/cobra"
)

var (
	inputPath  string
	targetUser string
	details    bool
	noNotes    bool
	sinceDate  string
	untilDate  string
)

var generateCmd = &cobra.Command{
	Use:   "generate [owner/repo ...]",
	Short: "Generate weekly reports for GitHub repositories",
	Long: `Generate reads repository targets from arguments, a file, or stdin, collects the
last week of commits, issues and discussions for each, and prints a markdown
report per target. Targets are owner/repo or GitHub URLs; a list line may add
a user login to narrow the report to one contributor.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addCommonFlags(generateCmd)
	generateCmd.Flags().StringVar(&inputPath, "input", "", "Target list file, one \"owner/repo [user]\" per line (\"-\" for stdin)")
	generateCmd.Flags().StringVar(&targetUser, "user", "", "Report on this contributor for targets that do not name one")
	generateCmd.Flags().BoolVar(&details, "details", false, "Append a table of every summarized item")
	generateCmd.Flags().BoolVar(&noNotes, "no-notes", false, "Disable notes section in output")
	generateCmd.Flags().StringVar(&sinceDate, "since", "", "Window start date (YYYY-MM-DD or RFC3339), overrides --since-days")
	generateCmd.Flags().StringVar(&untilDate, "until", "", "Window end date, inclusive for YYYY-MM-DD (default: now)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Setup logging
	logger := setupLogger(cfg)
	ctx = context.WithValue(ctx, "logger", logger)

	listPath := inputPath
	if listPath == "-" {
		listPath = ""
	}
	targets, err := input.ResolveTargets(ctx, input.ResolverConfig{
		Args:     args,
		User:     targetUser,
		ListPath: listPath,
		UseStdin: inputPath == "-" || (inputPath == "" && len(args) == 0),
	})
	if err != nil {
		return fmt.Errorf("failed to resolve targets: %w", err)
	}
	if len(targets) == 0 {
		fmt.Fprintf(os.Stderr, "No targets found\n")
		os.Exit(2) // Exit code 2 for no reports produced
	}
	logger.Info("Targets resolved", "count", len(targets))

	var runnerOpts []report.RunnerOption
	if sinceDate != "" || untilDate != "" {
		window, err := derive.ParseWindow(sinceDate, untilDate, cfg.SinceDays, time.Now())
		if err != nil {
			return fmt.Errorf("invalid report window: %w", err)
		}
		logger.Info("Using fixed report window", "window", window.String())
		runnerOpts = append(runnerOpts, report.WithWindow(window))
	}

	runner, fetcher, closeCache, err := buildRunner(ctx, cfg, logger, runnerOpts...)
	if err != nil {
		return err
	}
	defer closeCache()

	opts := reportOptions{details: details, notes: !noNotes}

	var produced, errorCount int
	for i, ref := range targets {
		target := report.Target{Owner: ref.Owner, Repo: ref.Repo, User: ref.User}
		logger.Info("Generating report", "target", target.String(), "progress", fmt.Sprintf("%d/%d", i+1, len(targets)))

		doc, err := generateReport(ctx, runner, fetcher, target, opts)
		if err != nil {
			errorCount++
			if errors.Is(err, report.ErrInvalidTarget) {
				fmt.Fprintf(os.Stderr, "%s: %s\n", target, report.InvalidTargetMessage)
			} else {
				fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", target, err)
			}
			logger.Debug("Error processing target", "target", target.String(), "error", err)
			continue
		}

		if produced > 0 {
			fmt.Print("\n---\n\n")
		}
		fmt.Print(format.RenderReport(doc))
		produced++

		if format.HasNotesOfKind(doc.Notes, format.NoteReportFailed) {
			errorCount++
		}
	}

	if produced == 0 {
		fmt.Fprintf(os.Stderr, "No reports generated\n")
		os.Exit(2)
	}

	if errorCount > 0 {
		logger.Info("Processing completed with errors", "errors", errorCount, "reports", produced)
	} else {
		logger.Info("Processing completed successfully", "reports", produced)
	}
	return nil
}

type reportOptions struct {
	details bool
	notes   bool
}

// contributorChecker is satisfied by github.Fetcher
type contributorChecker interface {
	IsCodeContributor(ctx context.Context, owner, repo, user string) (bool, error)
}

// generateReport runs the full pipeline for one target. The only error is a
// failed collection; a failed narrative still yields a document carrying
// the fallback text and a note.
func generateReport(ctx context.Context, runner *report.Runner, checker contributorChecker,
	target report.Target, opts reportOptions) (format.Document, error) {

	logger := ai.LoggerFrom(ctx)

	req, window, err := runner.Collect(ctx, target)
	if err != nil {
		return format.Document{}, err
	}

	var notes []format.Note
	if target.User != "" && checker != nil {
		contributor, err := checker.IsCodeContributor(ctx, target.Owner, target.Repo, target.User)
		if err != nil {
			logger.Debug("Contributor check failed", "target", target.String(), "error", err)
		} else if !contributor {
			notes = append(notes, format.Note{Kind: format.NoteNotContributor, Target: target.String(), User: target.User})
		}
	}

	result := runner.Generate(ctx, req, func(e report.Event) {
		if line := format.ProgressLine(e); line != "" {
			logger.Info(line, "target", target.String())
		}
	})
	notes = append(notes, format.ResultNotes(target.String(), runner.SinceDays(), req, result)...)

	doc := format.Document{
		Target: target.String(),
		Window: window,
		Body:   result.Text,
	}
	if opts.details {
		doc.Rows = format.RowsFrom(req.Commits, req.Issues, req.Discussions)
	}
	if opts.notes {
		doc.Notes = notes
	}
	return doc, nil
}
