package bot

import (
	"context"
	"errors"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
	"github.com/Attamusc/weekly-report-bot/internal/format"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

// Reporter produces reports; report.Runner implements it
type Reporter interface {
	Collect(ctx context.Context, target report.Target) (report.Request, derive.Window, error)
	Generate(ctx context.Context, req report.Request, progress report.ProgressFunc) report.Result
}

// ContributorChecker reports whether a user has commits in a repository
type ContributorChecker interface {
	IsCodeContributor(ctx context.Context, owner, repo, user string) (bool, error)
}

// messenger delivers one report run to a chat: a status message that is
// rewritten as work progresses, then the report itself
type messenger interface {
	Status(text string) error
	Send(text string) error
}

// session runs report requests against a reporter
type session struct {
	reporter Reporter
	checker  ContributorChecker
}

// run validates the target, narrates progress through m, and delivers the
// report in chunks. Delivery failures are logged, not returned; the error
// reports only whether a report was produced.
func (s *session) run(ctx context.Context, target report.Target, m messenger) error {
	logger := ai.LoggerFrom(ctx).With("target", target.String())

	var progress format.Progress
	update := func(line string) {
		if msg, changed := progress.Add(line); changed {
			if err := m.Status(msg); err != nil {
				logger.Warn("Failed to update status message", "error", err)
			}
		}
	}

	req, _, err := s.reporter.Collect(ctx, target)
	if err != nil {
		if errors.Is(err, report.ErrInvalidTarget) {
			logger.Info("Rejected invalid target", "error", err)
			if sendErr := m.Status(report.InvalidTargetMessage); sendErr != nil {
				logger.Warn("Failed to send invalid target message", "error", sendErr)
			}
			return err
		}
		logger.Error("Failed to collect activity", "error", err)
		if sendErr := m.Status(report.FallbackReport); sendErr != nil {
			logger.Warn("Failed to send fallback message", "error", sendErr)
		}
		return err
	}

	if target.User == "" {
		update(format.NoUserLine(target.Owner, target.Repo))
	} else if s.checker != nil {
		contributor, err := s.checker.IsCodeContributor(ctx, target.Owner, target.Repo, target.User)
		switch {
		case err != nil:
			logger.Warn("Contributor check failed", "error", err)
		case !contributor:
			update(format.NotContributorLine(target.Owner, target.Repo, target.User))
		}
	}
	update(format.StartLine(target.Owner, target.Repo, target.User))

	result := s.reporter.Generate(ctx, req, func(e report.Event) {
		update(format.ProgressLine(e))
	})

	logger.Info("Report generated", "failed", result.Failed, "length", len(result.Text))

	for i, chunk := range format.Chunk(result.Text, format.MaxMessageRunes) {
		if err := m.Send(chunk); err != nil {
			logger.Error("Failed to send report chunk", "chunk", i, "error", err)
			break
		}
	}
	return nil
}
