package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
	"github.com/Attamusc/weekly-report-bot/internal/format"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

type fakeReporter struct {
	collectErr error
	events     []report.Event
	result     report.Result
	generated  bool
}

func (f *fakeReporter) Collect(_ context.Context, target report.Target) (report.Request, derive.Window, error) {
	if f.collectErr != nil {
		return report.Request{}, derive.Window{}, f.collectErr
	}
	return report.Request{Owner: target.Owner, Repo: target.Repo, User: target.User}, derive.Window{}, nil
}

func (f *fakeReporter) Generate(_ context.Context, _ report.Request, progress report.ProgressFunc) report.Result {
	f.generated = true
	for _, e := range f.events {
		progress(e)
	}
	return f.result
}

type fakeChecker struct {
	contributor bool
	err         error
}

func (f fakeChecker) IsCodeContributor(context.Context, string, string, string) (bool, error) {
	return f.contributor, f.err
}

// recordingMessenger keeps every status revision and sent message
type recordingMessenger struct {
	statuses []string
	sent     []string
	sendErr  error
}

func (m *recordingMessenger) Status(text string) error {
	m.statuses = append(m.statuses, text)
	return nil
}

func (m *recordingMessenger) Send(text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, text)
	return nil
}

func (m *recordingMessenger) lastStatus() string {
	if len(m.statuses) == 0 {
		return ""
	}
	return m.statuses[len(m.statuses)-1]
}

func TestSession_Run(t *testing.T) {
	reporter := &fakeReporter{
		events: []report.Event{
			{Stage: report.StageFound, Kind: activity.KindCommit, Count: 2, Refs: []string{"abc1234", "def5678"}},
			{Stage: report.StageSummarized, Kind: activity.KindCommit, Count: 2},
			{Stage: report.StageFound, Kind: activity.KindIssue, Count: 0},
			{Stage: report.StageSummarized, Kind: activity.KindIssue, Count: 0},
			{Stage: report.StageCorrelating},
			{Stage: report.StageDone},
		},
		result: report.Result{Text: "Alice fixed the lexer."},
	}
	s := &session{reporter: reporter, checker: fakeChecker{contributor: true}}
	m := &recordingMessenger{}

	err := s.run(context.Background(), report.Target{Owner: "o", Repo: "r", User: "alice"}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := strings.Join([]string{
		"exploring alice's GitHub contributions to `o/r` project",
		"found 2 commits: abc1234, def5678",
		"summarized 2 commits",
		"found 0 issues",
		"writing the weekly report...",
	}, "\n")
	if got := m.lastStatus(); got != expected {
		t.Errorf("unexpected status\nExpected:\n%s\nGot:\n%s", expected, got)
	}
	if len(m.statuses) != 5 {
		t.Errorf("expected one status edit per visible line, got %d", len(m.statuses))
	}
	if len(m.sent) != 1 || m.sent[0] != "Alice fixed the lexer." {
		t.Errorf("unexpected sent messages %q", m.sent)
	}
}

func TestSession_Run_Preamble(t *testing.T) {
	tests := []struct {
		name      string
		target    report.Target
		checker   ContributorChecker
		wantFirst string
	}{
		{
			name:      "no user",
			target:    report.Target{Owner: "o", Repo: "r"},
			checker:   fakeChecker{},
			wantFirst: "You didn't input a user's name. Bot will then create a report on the weekly progress of o/r.",
		},
		{
			name:      "not a contributor",
			target:    report.Target{Owner: "o", Repo: "r", User: "bob"},
			checker:   fakeChecker{contributor: false},
			wantFirst: "bob hasn't contributed code to o/r. Bot will try to find out bob's other contributions.",
		},
		{
			name:      "check failure is silent",
			target:    report.Target{Owner: "o", Repo: "r", User: "bob"},
			checker:   fakeChecker{err: errors.New("rate limited")},
			wantFirst: "exploring bob's GitHub contributions to `o/r` project",
		},
		{
			name:      "no checker",
			target:    report.Target{Owner: "o", Repo: "r", User: "bob"},
			checker:   nil,
			wantFirst: "exploring bob's GitHub contributions to `o/r` project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session{reporter: &fakeReporter{result: report.Result{Text: "x"}}, checker: tt.checker}
			m := &recordingMessenger{}

			if err := s.run(context.Background(), tt.target, m); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(m.statuses) == 0 {
				t.Fatal("expected status messages")
			}
			if first := strings.SplitN(m.statuses[0], "\n", 2)[0]; first != tt.wantFirst {
				t.Errorf("expected first line %q, got %q", tt.wantFirst, first)
			}
		})
	}
}

func TestSession_Run_InvalidTarget(t *testing.T) {
	reporter := &fakeReporter{collectErr: fmt.Errorf("o/gone: %w", report.ErrInvalidTarget)}
	s := &session{reporter: reporter, checker: fakeChecker{contributor: true}}
	m := &recordingMessenger{}

	err := s.run(context.Background(), report.Target{Owner: "o", Repo: "gone", User: "alice"}, m)
	if !errors.Is(err, report.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if len(m.statuses) != 1 || m.statuses[0] != report.InvalidTargetMessage {
		t.Errorf("expected only the invalid target message, got %q", m.statuses)
	}
	if reporter.generated || len(m.sent) != 0 {
		t.Error("expected no report for an invalid target")
	}
}

func TestSession_Run_CollectFailure(t *testing.T) {
	s := &session{reporter: &fakeReporter{collectErr: errors.New("network down")}}
	m := &recordingMessenger{}

	if err := s.run(context.Background(), report.Target{Owner: "o", Repo: "r"}, m); err == nil {
		t.Fatal("expected error")
	}
	if m.lastStatus() != report.FallbackReport {
		t.Errorf("expected fallback message, got %q", m.lastStatus())
	}
}

func TestSession_Run_ChunksLongReports(t *testing.T) {
	long := strings.Repeat("The parser work continued with more tests.\n", 250)
	s := &session{reporter: &fakeReporter{result: report.Result{Text: long}}}
	m := &recordingMessenger{}

	if err := s.run(context.Background(), report.Target{Owner: "o", Repo: "r"}, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.sent) < 2 {
		t.Fatalf("expected the report to be split, got %d messages", len(m.sent))
	}
	for i, msg := range m.sent {
		if n := utf8.RuneCountInString(msg); n > format.MaxMessageRunes {
			t.Errorf("message %d has %d runes", i, n)
		}
	}
}

func TestSession_Run_StopsSendingAfterFailure(t *testing.T) {
	long := strings.Repeat("word ", 3000)
	s := &session{reporter: &fakeReporter{result: report.Result{Text: long}}}
	m := &recordingMessenger{sendErr: errors.New("blocked by user")}

	if err := s.run(context.Background(), report.Target{Owner: "o", Repo: "r"}, m); err != nil {
		t.Fatalf("delivery failures should not be returned, got %v", err)
	}
}
