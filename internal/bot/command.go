package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/input"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

// Usage is the help text for the report command
const Usage = "Usage: /weekly_report <owner> <repo> [user]\nor: /weekly_report <owner/repo or GitHub URL> [user]"

// ErrUsage is returned for a malformed command payload
var ErrUsage = errors.New("malformed weekly_report command")

// ParseCommand reads the target from a /weekly_report payload. Accepted forms
// are "owner repo [user]" and "owner/repo [user]", where owner/repo may also
// be a GitHub URL.
func ParseCommand(payload string) (report.Target, error) {
	fields := strings.Fields(payload)

	var ref input.RepoRef
	var rest []string
	var err error

	switch {
	case len(fields) == 0:
		return report.Target{}, ErrUsage
	case strings.Contains(fields[0], "/"):
		ref, err = input.ParseRepoRef(fields[0])
		rest = fields[1:]
	case len(fields) >= 2:
		ref, err = input.ParseRepoRef(fields[0] + "/" + fields[1])
		rest = fields[2:]
	default:
		return report.Target{}, ErrUsage
	}
	if err != nil {
		return report.Target{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	switch len(rest) {
	case 0:
	case 1:
		ref.User = strings.TrimPrefix(rest[0], "@")
	default:
		return report.Target{}, ErrUsage
	}

	return report.Target{Owner: ref.Owner, Repo: ref.Repo, User: ref.User}, nil
}
