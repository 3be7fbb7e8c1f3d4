package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/google/go-github/v66/github"
)

// FetchRepoProfile returns the repository description and readme as a Meta
// record. An error means the repository cannot be read with this token.
func (f *Fetcher) FetchRepoProfile(ctx context.Context, owner, repo string) (*activity.Record, error) {
	logger := ai.LoggerFrom(ctx)
	target := owner + "/" + repo

	repository, _, err := f.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if enhancedErr := enhanceGitHubError(err, target); enhancedErr != nil {
			return nil, enhancedErr
		}
		return nil, fmt.Errorf("failed to fetch repository %s: %w", target, err)
	}

	var parts []string

	description := repository.GetDescription()
	if metrics, _, err := f.client.Repositories.GetCommunityHealthMetrics(ctx, owner, repo); err != nil {
		logger.Debug("Community profile unavailable", "repo", target, "error", err)
	} else if metrics.GetDescription() != "" {
		description = metrics.GetDescription()
	}
	if description != "" {
		parts = append(parts, "Description: "+description)
	}

	readme, _, err := f.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		logger.Debug("Readme unavailable", "repo", target, "error", err)
	} else if content, err := readme.GetContent(); err != nil {
		logger.Debug("Readme could not be decoded", "repo", target, "error", err)
	} else if strings.TrimSpace(content) != "" {
		parts = append(parts, "Readme: "+content)
	}

	return activity.NewRecord(
		activity.KindMeta,
		owner,
		repository.GetFullName(),
		repository.GetHTMLURL(),
		strings.Join(parts, "\n"),
		activity.DateOf(repository.GetUpdatedAt().Time),
	), nil
}

// FetchUserProfile renders a user's public profile as one line
func (f *Fetcher) FetchUserProfile(ctx context.Context, user string) (string, error) {
	u, _, err := f.client.Users.Get(ctx, user)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user %s: %w", user, err)
	}

	var fields []string
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, label+": "+value)
		}
	}
	add("Login", u.GetLogin())
	add("Name", u.GetName())
	add("Url", u.GetHTMLURL())
	add("Twitter", u.GetTwitterUsername())
	add("Bio", u.GetBio())
	add("Company", u.GetCompany())
	add("Location", u.GetLocation())
	if !u.GetCreatedAt().IsZero() {
		add("Created At", activity.DateOf(u.GetCreatedAt().Time).String())
	}
	add("Email", u.GetEmail())

	return strings.Join(fields, ", "), nil
}

// IsCodeContributor reports whether user appears in the repository's
// contributor list. The list is fetched once per repository.
func (f *Fetcher) IsCodeContributor(ctx context.Context, owner, repo, user string) (bool, error) {
	key := owner + "/" + repo

	f.mu.Lock()
	logins, ok := f.contributors[key]
	f.mu.Unlock()

	if !ok {
		var err error
		logins, err = f.listContributors(ctx, owner, repo)
		if err != nil {
			return false, err
		}
		f.mu.Lock()
		f.contributors[key] = logins
		f.mu.Unlock()
	}

	return logins[strings.ToLower(user)], nil
}

func (f *Fetcher) listContributors(ctx context.Context, owner, repo string) (map[string]bool, error) {
	logins := make(map[string]bool)
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: 100},
	}

	for {
		contributors, resp, err := f.client.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list contributors for %s/%s: %w", owner, repo, err)
		}
		for _, c := range contributors {
			logins[strings.ToLower(c.GetLogin())] = true
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return logins, nil
}
