package input

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// RepoRef identifies a repository to report on, optionally narrowed to one
// contributor
type RepoRef struct {
	Owner string
	Repo  string
	User  string // empty reports on the whole repository
}

// String returns owner/repo, or owner/repo@user when a user is set
func (ref RepoRef) String() string {
	if ref.User == "" {
		return ref.Owner + "/" + ref.Repo
	}
	return fmt.Sprintf("%s/%s@%s", ref.Owner, ref.Repo, ref.User)
}

// URL returns the canonical repository URL
func (ref RepoRef) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s", ref.Owner, ref.Repo)
}

// key is the case-insensitive identity used for deduplication
func (ref RepoRef) key() string {
	return strings.ToLower(ref.String())
}

var (
	// githubRepoRegex matches repository URLs and any deeper path under them
	githubRepoRegex = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([^/]+)/([^/]+)`)
	// nameRegex matches valid owner and repository names
	nameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// ParseRepoRef parses a repository given as owner/repo, github.com/owner/repo
// or a full GitHub URL. Query parameters, fragments, a trailing .git and any
// path below the repository are ignored.
func ParseRepoRef(raw string) (RepoRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return RepoRef{}, fmt.Errorf("empty repository reference")
	}

	if strings.HasPrefix(s, "github.com/") {
		s = "https://" + s
	}

	var owner, repo string
	if strings.Contains(s, "://") {
		parsedURL, err := url.Parse(s)
		if err != nil {
			return RepoRef{}, fmt.Errorf("invalid URL format: %s", raw)
		}
		parsedURL.RawQuery = ""
		parsedURL.Fragment = ""

		matches := githubRepoRegex.FindStringSubmatch(parsedURL.String())
		if matches == nil {
			return RepoRef{}, fmt.Errorf("invalid GitHub repository URL format: %s", raw)
		}
		owner, repo = matches[1], matches[2]
	} else {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return RepoRef{}, fmt.Errorf("expected owner/repo, got %q", raw)
		}
		owner, repo = parts[0], parts[1]
	}

	repo = strings.TrimSuffix(repo, ".git")
	if !nameRegex.MatchString(owner) || !nameRegex.MatchString(repo) {
		return RepoRef{}, fmt.Errorf("invalid owner or repository name in %q", raw)
	}

	return RepoRef{Owner: owner, Repo: repo}, nil
}

// ParseRepoLines parses one target per line from a reader. A line holds a
// repository reference optionally followed by a user login. Empty lines and
// lines starting with # are skipped. Deduplicates while maintaining stable
// order.
func ParseRepoLines(r io.Reader) ([]RepoRef, error) {
	var refs []RepoRef
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected \"<repo> [user]\", got %q", lineNo, line)
		}

		ref, err := ParseRepoRef(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(fields) == 2 {
			ref.User = strings.TrimPrefix(fields[1], "@")
		}

		if seen[ref.key()] {
			continue
		}
		seen[ref.key()] = true
		refs = append(refs, ref)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return refs, nil
}
