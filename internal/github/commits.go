package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
	"github.com/google/go-github/v66/github"
)

// FetchCommits lists commits in the window, optionally filtered by author,
// and attaches each commit's patch as the record body. Commits whose patch
// cannot be fetched are skipped.
func (f *Fetcher) FetchCommits(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error) {
	logger := ai.LoggerFrom(ctx)
	target := owner + "/" + repo

	logger.Debug("Fetching commits", "repo", target, "author", user, "window", window.String())

	opts := &github.CommitsListOptions{
		Author: user,
		Since:  window.Since,
		Until:  window.Until,
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: 100, // Maximum allowed per page
		},
	}

	var records []*activity.Record
	for {
		commits, resp, err := f.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if enhancedErr := enhanceGitHubError(err, target); enhancedErr != nil {
				return nil, enhancedErr
			}
			return nil, fmt.Errorf("failed to list commits for %s: %w", target, err)
		}

		logger.Debug("Commits page fetched", "repo", target, "page", opts.Page, "count", len(commits))

		for _, c := range commits {
			committed := c.GetCommit().GetAuthor().GetDate().Time
			if !window.Contains(committed) {
				continue
			}

			patch, _, err := f.client.Repositories.GetCommitRaw(ctx, owner, repo, c.GetSHA(), github.RawOptions{Type: github.Patch})
			if err != nil {
				logger.Error("Failed to fetch commit patch, skipping", "sha", c.GetSHA(), "error", err)
				continue
			}

			records = append(records, activity.NewRecord(
				activity.KindCommit,
				commitAuthor(c),
				subjectLine(c.GetCommit().GetMessage()),
				c.GetHTMLURL(),
				patch,
				activity.DateOf(committed),
			))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.Debug("Commits fetch completed", "repo", target, "total", len(records))
	return records, nil
}

func commitAuthor(c *github.RepositoryCommit) string {
	if login := c.GetAuthor().GetLogin(); login != "" {
		return login
	}
	return c.GetCommit().GetAuthor().GetName()
}

func subjectLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}
