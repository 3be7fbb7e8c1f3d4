package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
)

// ErrInvalidTarget is returned when the repository cannot be read
var ErrInvalidTarget = errors.New("invalid or private repository")

// InvalidTargetMessage is shown to users whose repository cannot be read
const InvalidTargetMessage = "You've entered invalid owner/repo, or the target is private. Please try again."

// Fetcher supplies activity records for a repository
type Fetcher interface {
	FetchRepoProfile(ctx context.Context, owner, repo string) (*activity.Record, error)
	FetchUserProfile(ctx context.Context, user string) (string, error)
	FetchCommits(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error)
	FetchIssues(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error)
	FetchDiscussions(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error)
}

// Target identifies whose activity a report covers
type Target struct {
	Owner string
	Repo  string
	User  string // empty for a whole-repository report
}

// String renders the target as owner/repo or owner/repo@user
func (t Target) String() string {
	s := t.Owner + "/" + t.Repo
	if t.User != "" {
		s += "@" + t.User
	}
	return s
}

// Collect fetches everything a report needs. A repository that cannot be
// read yields ErrInvalidTarget; a failing category is logged and left empty.
func Collect(ctx context.Context, f Fetcher, target Target, window derive.Window) (Request, error) {
	logger := ai.LoggerFrom(ctx).With("target", target.String())

	req := Request{Owner: target.Owner, Repo: target.Repo, User: target.User}

	profile, err := f.FetchRepoProfile(ctx, target.Owner, target.Repo)
	if err != nil {
		logger.Debug("Repository profile unavailable", "error", err)
		return Request{}, fmt.Errorf("%s: %w: %w", target, ErrInvalidTarget, err)
	}

	var parts []string
	if profile != nil && strings.TrimSpace(profile.Body) != "" {
		parts = append(parts, profile.Body)
	}
	if target.User != "" {
		userProfile, err := f.FetchUserProfile(ctx, target.User)
		if err != nil {
			logger.Warn("User profile unavailable", "user", target.User, "error", err)
		} else if userProfile != "" {
			parts = append(parts, userProfile)
		}
	}
	req.Profile = strings.Join(parts, "\n")

	if req.Commits, err = f.FetchCommits(ctx, target.Owner, target.Repo, target.User, window); err != nil {
		logger.Error("Failed to fetch commits", "error", err)
	}
	if req.Issues, err = f.FetchIssues(ctx, target.Owner, target.Repo, target.User, window); err != nil {
		logger.Error("Failed to fetch issues", "error", err)
	}
	if req.Discussions, err = f.FetchDiscussions(ctx, target.Owner, target.Repo, target.User, window); err != nil {
		logger.Error("Failed to fetch discussions", "error", err)
	}

	logger.Info("Activity collected",
		"window", window.String(),
		"commits", len(req.Commits),
		"issues", len(req.Issues),
		"discussions", len(req.Discussions))

	return req, nil
}
