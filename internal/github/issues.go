package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
	"github.com/google/go-github/v66/github"
)

// IssueSearchQuery builds the search used to find issues touched in the window
func IssueSearchQuery(owner, repo, user string, window derive.Window) string {
	parts := []string{"repo:" + owner + "/" + repo, "is:issue"}
	if user != "" {
		parts = append(parts, "involves:"+user)
	}
	parts = append(parts, window.UpdatedQualifier())
	return strings.Join(parts, " ")
}

// FetchIssues searches issues updated in the window that involve user (any
// participant when user is empty) and attaches each issue's thread text
func (f *Fetcher) FetchIssues(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error) {
	logger := ai.LoggerFrom(ctx)
	target := owner + "/" + repo
	query := IssueSearchQuery(owner, repo, user, window)

	logger.Debug("Searching issues", "query", query)

	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: 100,
		},
	}

	var records []*activity.Record
	for {
		result, resp, err := f.client.Search.Issues(ctx, query, opts)
		if err != nil {
			if enhancedErr := enhanceGitHubError(err, target); enhancedErr != nil {
				return nil, enhancedErr
			}
			return nil, fmt.Errorf("failed to search issues for %s: %w", target, err)
		}

		logger.Debug("Issue search page fetched", "page", opts.Page, "count", len(result.Issues))

		for _, issue := range result.Issues {
			thread, err := f.FetchIssueThread(ctx, owner, repo, issue)
			if err != nil {
				logger.Error("Failed to fetch issue thread, skipping", "issue", issue.GetHTMLURL(), "error", err)
				continue
			}

			records = append(records, activity.NewRecord(
				activity.KindIssue,
				issue.GetUser().GetLogin(),
				issue.GetTitle(),
				issue.GetHTMLURL(),
				thread,
				activity.DateOf(issue.GetCreatedAt().Time),
			))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.Debug("Issue search completed", "repo", target, "total", len(records))
	return records, nil
}

// FetchIssueThread renders the opening post and comments of an issue as one
// text. Each post is stripped of quoted code and fitted to
// budget.PostWordCap words; comments stop being added once the thread is
// longer than budget.CategoryCharCap characters.
func (f *Fetcher) FetchIssueThread(ctx context.Context, owner, repo string, issue *github.Issue) (string, error) {
	logger := ai.LoggerFrom(ctx)

	var labels []string
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User '%s', opened an issue titled '%s', labeled '%s', with the following post: '%s'.",
		issue.GetUser().GetLogin(),
		issue.GetTitle(),
		strings.Join(labels, ", "),
		fitPost(issue.GetBody(), budget.PostWordCap))
	size := utf8.RuneCountInString(b.String())

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: 100, // Maximum allowed per page
		},
	}

	for {
		comments, resp, err := f.client.Issues.ListComments(ctx, owner, repo, issue.GetNumber(), opts)
		if err != nil {
			return "", fmt.Errorf("failed to fetch comments for issue #%d: %w", issue.GetNumber(), err)
		}

		logger.Debug("Comments page fetched", "issue", issue.GetNumber(), "page", opts.Page, "count", len(comments))

		for _, comment := range comments {
			if size > budget.CategoryCharCap {
				return b.String(), nil
			}
			post := fmt.Sprintf("\n%s commented: %s", comment.GetUser().GetLogin(), fitPost(comment.GetBody(), budget.PostWordCap))
			b.WriteString(post)
			size += utf8.RuneCountInString(post)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return b.String(), nil
}

// fitPost strips quoted code from a post and caps its length. The result
// carries no trailing newline so callers control the layout.
func fitPost(body string, maxWords int) string {
	return strings.TrimSpace(budget.StripAndFit(body, budget.CodeFence, maxWords, budget.HeadRatio))
}

// enhanceGitHubError checks for common GitHub API error conditions and provides helpful error messages
func enhanceGitHubError(err error, target string) error {
	// Convert to GitHub ErrorResponse if possible
	if ghErr, ok := err.(*github.ErrorResponse); ok {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("GitHub API authentication failed for %s. Please check your GITHUB_TOKEN is valid and has the required permissions: %w", target, err)

		case http.StatusForbidden:
			// Check if this might be an SSO authorization issue
			if strings.Contains(strings.ToLower(ghErr.Message), "sso") ||
				strings.Contains(strings.ToLower(ghErr.Message), "organization") {
				return fmt.Errorf("GitHub API access denied for %s. Your token may require SSO authorization for this organization. Visit: https://github.com/settings/tokens and authorize your token for SSO: %w", target, err)
			}

			// Generic 403 error
			return fmt.Errorf("GitHub API access denied for %s. Your token may not have sufficient permissions to access this repository: %w", target, err)

		case http.StatusNotFound:
			return fmt.Errorf("GitHub repository %s not found. This could mean the repository is private and your token lacks access, or it doesn't exist: %w", target, err)
		}
	}

	// Check for timeout errors
	if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline exceeded") {
		return fmt.Errorf("GitHub API request timed out for %s. Please check your network connection and try again: %w", target, err)
	}

	// Return nil to indicate no enhancement was applied
	return nil
}
