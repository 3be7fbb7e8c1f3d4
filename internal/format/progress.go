package format

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Attamusc/weekly-report-bot/internal/report"
)

// maxProgressRefs bounds how many item references one progress line lists
const maxProgressRefs = 30

// StartLine announces whose contributions are being explored
func StartLine(owner, repo, user string) string {
	addressee := "key community participants'"
	if user != "" {
		addressee = user + "'s"
	}
	return fmt.Sprintf("exploring %s GitHub contributions to `%s/%s` project", addressee, owner, repo)
}

// NoUserLine acknowledges a whole-repository report
func NoUserLine(owner, repo string) string {
	return fmt.Sprintf("You didn't input a user's name. Bot will then create a report on the weekly progress of %s/%s.", owner, repo)
}

// NotContributorLine tells the requester that user has no commits in the
// repository; the report still covers their other activity
func NotContributorLine(owner, repo, user string) string {
	return fmt.Sprintf("%s hasn't contributed code to %s/%s. Bot will try to find out %s's other contributions.", user, owner, repo, user)
}

// ProgressLine renders a progress event, such as "found 3 commits: 1a2b3c4,
// 5d6e7f8, 9a0b1c2". Events with nothing to show render as "".
func ProgressLine(e report.Event) string {
	switch e.Stage {
	case report.StageFound:
		line := fmt.Sprintf("found %d %s", e.Count, e.Kind.Plural())
		if len(e.Refs) == 0 {
			return line
		}
		refs := e.Refs
		more := ""
		if len(refs) > maxProgressRefs {
			more = fmt.Sprintf(" and %d more", len(refs)-maxProgressRefs)
			refs = refs[:maxProgressRefs]
		}
		return line + ": " + strings.Join(refs, ", ") + more

	case report.StageSummarized:
		if e.Count == 0 {
			return ""
		}
		return fmt.Sprintf("summarized %d %s", e.Count, e.Kind.Plural())

	case report.StageCorrelating:
		return "writing the weekly report..."

	default:
		return ""
	}
}

// Progress accumulates progress lines into one status message. It is safe
// for concurrent use.
type Progress struct {
	mu    sync.Mutex
	lines []string
}

// Add appends a line and returns the whole message. Empty lines are ignored
// and report changed=false.
func (p *Progress) Add(line string) (message string, changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if line == "" {
		return strings.Join(p.lines, "\n"), false
	}
	p.lines = append(p.lines, line)
	return strings.Join(p.lines, "\n"), true
}

// String returns the message built so far
func (p *Progress) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.lines, "\n")
}
