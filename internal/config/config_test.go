package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable the config reads so host settings do not
// leak into tests. t.Setenv registers the restore.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "REPORT_SINCE_DAYS", "REPORT_CONCURRENCY",
		"REPORT_PROVIDER", "GITHUB_MODELS_BASE_URL", "GITHUB_MODELS_MODEL",
		"REPORT_TEMPERATURE", "MODELS_TIMEOUT",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"REDIS_URL", "SUMMARY_CACHE_TTL", "DISABLE_SUMMARY_CACHE",
		"TELEGRAM_TOKEN", "TELEGRAM_ALLOWED_CHATS", "TELEGRAM_REPORT_CHAT_ID",
		"REPORT_SCHEDULE", "REPORT_TARGETS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnvAndFlags_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := FromEnvAndFlags(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SinceDays != 7 {
		t.Errorf("expected default since days 7, got %d", cfg.SinceDays)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Concurrency)
	}
	if cfg.Models.Provider != ProviderGHModels {
		t.Errorf("expected ghmodels provider, got %s", cfg.Models.Provider)
	}
	if cfg.Models.BaseURL != "https://models.github.ai" {
		t.Errorf("unexpected base URL %s", cfg.Models.BaseURL)
	}
	if cfg.Models.Timeout != 60*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Models.Timeout)
	}
	if cfg.Models.Temperature != 0.7 {
		t.Errorf("unexpected temperature %v", cfg.Models.Temperature)
	}
	if cfg.Cache.TTL != 7*24*time.Hour {
		t.Errorf("unexpected cache TTL %s", cfg.Cache.TTL)
	}
	if cfg.Telegram.Schedule != "0 9 * * MON" {
		t.Errorf("unexpected schedule %q", cfg.Telegram.Schedule)
	}
}

func TestFromEnvAndFlags_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("REPORT_SINCE_DAYS", "14")
	t.Setenv("REPORT_CONCURRENCY", "2")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := FromEnvAndFlags(Flags{SinceDays: 3, Provider: ProviderOpenAI, Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SinceDays != 3 {
		t.Errorf("expected flag to win, got %d", cfg.SinceDays)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("expected env concurrency 2, got %d", cfg.Concurrency)
	}
	if cfg.Models.Provider != ProviderOpenAI {
		t.Errorf("expected openai provider, got %s", cfg.Models.Provider)
	}
	if !cfg.Verbose {
		t.Error("expected verbose")
	}
}

func TestFromEnvAndFlags_QuietWinsOverVerbose(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := FromEnvAndFlags(Flags{Verbose: true, Quiet: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Verbose || !cfg.Quiet {
		t.Errorf("expected quiet only, got verbose=%v quiet=%v", cfg.Verbose, cfg.Quiet)
	}
}

func TestFromEnvAndFlags_ListsAndDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("TELEGRAM_ALLOWED_CHATS", "-1001,42")
	t.Setenv("REPORT_TARGETS", "owner/repo,other/project")
	t.Setenv("SUMMARY_CACHE_TTL", "24h")

	cfg, err := FromEnvAndFlags(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Telegram.AllowedChats) != 2 || cfg.Telegram.AllowedChats[0] != -1001 {
		t.Errorf("unexpected allowed chats %v", cfg.Telegram.AllowedChats)
	}
	if len(cfg.Telegram.Targets) != 2 || cfg.Telegram.Targets[1] != "other/project" {
		t.Errorf("unexpected targets %v", cfg.Telegram.Targets)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("unexpected TTL %s", cfg.Cache.TTL)
	}
}

func TestFromEnvAndFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		flags   Flags
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: "GITHUB_TOKEN",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"GITHUB_TOKEN": "x"},
			flags:   Flags{Provider: "bard"},
			wantErr: "unknown provider",
		},
		{
			name:    "openai without key",
			env:     map[string]string{"GITHUB_TOKEN": "x"},
			flags:   Flags{Provider: ProviderOpenAI},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "negative since days",
			env:     map[string]string{"GITHUB_TOKEN": "x"},
			flags:   Flags{SinceDays: -1},
			wantErr: "since days",
		},
		{
			name:    "malformed duration",
			env:     map[string]string{"GITHUB_TOKEN": "x", "MODELS_TIMEOUT": "soon"},
			wantErr: "failed to parse environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnvAndFlags(tt.flags)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateBot(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TelegramConfig
		wantErr bool
	}{
		{name: "token only", cfg: TelegramConfig{Token: "t"}},
		{name: "missing token", cfg: TelegramConfig{}, wantErr: true},
		{name: "schedule without targets", cfg: TelegramConfig{Token: "t", ReportChatID: 5}, wantErr: true},
		{name: "schedule with targets", cfg: TelegramConfig{Token: "t", ReportChatID: 5, Targets: []string{"o/r"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Config{Telegram: tt.cfg}).ValidateBot()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBot() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChatAllowed(t *testing.T) {
	open := &Config{}
	if !open.ChatAllowed(123) {
		t.Error("empty allow list should admit every chat")
	}

	restricted := &Config{Telegram: TelegramConfig{AllowedChats: []int64{1, 2}}}
	if !restricted.ChatAllowed(2) || restricted.ChatAllowed(3) {
		t.Error("allow list not applied")
	}
}
