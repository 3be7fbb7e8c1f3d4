// Package bot serves weekly reports over Telegram: on demand through the
// /weekly_report command and on a cron schedule to a configured chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	tele "gopkg.in/telebot.v3"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
	"github.com/Attamusc/weekly-report-bot/internal/config"
	"github.com/Attamusc/weekly-report-bot/internal/format"
	"github.com/Attamusc/weekly-report-bot/internal/input"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

const baseContextKey = "base_context"

// Bot is a Telegram front end for report generation
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	session *session

	scheduler *cron.Cron
	scheduled []report.Target

	stopOnce sync.Once
}

// New connects to Telegram and registers the command handlers. When a
// report chat is configured it also prepares the weekly schedule.
func New(ctx context.Context, cfg *config.Config, reporter Reporter, checker ContributorChecker) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		session: &session{reporter: reporter, checker: checker},
	}

	if cfg.Telegram.ReportChatID != 0 {
		bot.scheduled, err = scheduledTargets(cfg.Telegram.Targets)
		if err != nil {
			return nil, err
		}
		bot.scheduler, err = newScheduler(cfg.Telegram.Schedule, func() { bot.postScheduled(ctx) })
		if err != nil {
			return nil, err
		}
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Ignore chats outside the allow list
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil || !cfg.ChatAllowed(c.Chat().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/weekly_report", bot.handleWeeklyReport)
	b.Handle("/start", bot.handleHelp)
	b.Handle("/help", bot.handleHelp)

	return bot, nil
}

// Start runs the scheduler and polls Telegram until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	logger := ai.LoggerFrom(ctx)

	if b.scheduler != nil {
		b.scheduler.Start()
		logger.Info("Scheduled reports enabled",
			"schedule", b.cfg.Telegram.Schedule,
			"chat", b.cfg.Telegram.ReportChatID,
			"targets", len(b.scheduled))
	}

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	logger.Info("Starting telegram bot", "username", b.bot.Me.Username)
	b.bot.Start()
	return nil
}

// Stop halts polling and waits briefly for running scheduled reports
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		if b.scheduler != nil {
			stopCtx := b.scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-time.After(5 * time.Second):
				slog.Warn("Timed out waiting for scheduled reports to finish")
			}
		}
		b.bot.Stop()
	})
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(Usage)
}

func (b *Bot) handleWeeklyReport(c tele.Context) error {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}

	target, err := ParseCommand(c.Message().Payload)
	if err != nil {
		return c.Send(Usage)
	}

	logger := ai.LoggerFrom(ctx)
	logger.Info("Report requested", "target", target.String(), "chat", c.Chat().ID)
	if err := b.session.run(ctx, target, &chatMessenger{bot: b.bot, to: c.Chat()}); err != nil {
		logger.Debug("Report not produced", "target", target.String(), "error", err)
	}
	return nil
}

// postScheduled reports on every scheduled target, one after another
func (b *Bot) postScheduled(ctx context.Context) {
	logger := ai.LoggerFrom(ctx)
	to := tele.ChatID(b.cfg.Telegram.ReportChatID)

	for _, target := range b.scheduled {
		if ctx.Err() != nil {
			return
		}
		logger.Info("Posting scheduled report", "target", target.String())
		if err := b.session.run(ctx, target, &chatMessenger{bot: b.bot, to: to}); err != nil {
			logger.Error("Scheduled report failed", "target", target.String(), "error", err)
		}
	}
}

// newScheduler creates a cron runner firing job on a standard five field
// spec
func newScheduler(spec string, job func()) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	return c, nil
}

// scheduledTargets parses "owner/repo [user]" entries
func scheduledTargets(entries []string) ([]report.Target, error) {
	refs, err := input.ParseRepoLines(strings.NewReader(strings.Join(entries, "\n")))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TARGETS: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("REPORT_TARGETS is empty")
	}

	targets := make([]report.Target, 0, len(refs))
	for _, ref := range refs {
		targets = append(targets, report.Target{Owner: ref.Owner, Repo: ref.Repo, User: ref.User})
	}
	return targets, nil
}

// chatMessenger sends one status message, edits it as progress arrives, and
// sends the report as separate messages
type chatMessenger struct {
	bot    *tele.Bot
	to     tele.Recipient
	status *tele.Message
}

func (m *chatMessenger) Status(text string) error {
	text = budget.TruncateRunes(text, format.MaxMessageRunes)
	if m.status == nil {
		msg, err := m.bot.Send(m.to, text, tele.NoPreview)
		if err != nil {
			return err
		}
		m.status = msg
		return nil
	}
	_, err := m.bot.Edit(m.status, text, tele.NoPreview)
	return err
}

func (m *chatMessenger) Send(text string) error {
	_, err := m.bot.Send(m.to, text, tele.NoPreview)
	return err
}
