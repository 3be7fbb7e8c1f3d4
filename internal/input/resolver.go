package input

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// InputMode represents the detected input mode
type InputMode int

const (
	// InputModeUnknown indicates no valid input detected
	InputModeUnknown InputMode = iota
	// InputModeArgs indicates targets given as command arguments
	InputModeArgs
	// InputModeList indicates a target list (stdin or file)
	InputModeList
	// InputModeMixed indicates both arguments and a target list
	InputModeMixed
)

// String returns the string representation of InputMode
func (m InputMode) String() string {
	switch m {
	case InputModeArgs:
		return "Arguments"
	case InputModeList:
		return "Target List"
	case InputModeMixed:
		return "Mixed (Arguments + Target List)"
	default:
		return "Unknown"
	}
}

// ResolverConfig holds configuration for input resolution
type ResolverConfig struct {
	// Args are repository references from the command line
	Args []string
	// User applies to every target that does not name its own user
	User string

	// Target list settings
	ListPath string // File path or empty for stdin
	UseStdin bool   // Whether to read from stdin

	// Stdin overrides os.Stdin, for tests
	Stdin io.Reader
}

// ResolveTargets determines input mode and returns deduplicated targets.
// This is the main entry point for getting targets from any source.
func ResolveTargets(ctx context.Context, cfg ResolverConfig) ([]RepoRef, error) {
	// Get logger from context
	logger, ok := ctx.Value("logger").(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}

	mode := detectInputMode(cfg)
	logger.Debug("Input mode detected", "mode", mode.String())

	if mode == InputModeUnknown {
		return nil, fmt.Errorf("no targets provided: pass owner/repo arguments or a target list via stdin/--input")
	}

	var all []RepoRef

	if mode == InputModeArgs || mode == InputModeMixed {
		for _, arg := range cfg.Args {
			ref, err := ParseRepoRef(arg)
			if err != nil {
				return nil, err
			}
			all = append(all, ref)
		}
		logger.Debug("Targets parsed from arguments", "count", len(cfg.Args))
	}

	if mode == InputModeList || mode == InputModeMixed {
		listed, err := readList(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read target list: %w", err)
		}
		logger.Debug("Targets parsed from list", "count", len(listed))
		all = append(all, listed...)
	}

	if cfg.User != "" {
		for i := range all {
			if all[i].User == "" {
				all[i].User = cfg.User
			}
		}
	}

	unique := deduplicateRefs(all)
	logger.Debug("Input resolution complete", "uniqueTargets", len(unique), "mode", mode.String())

	return unique, nil
}

// detectInputMode determines which input mode to use based on configuration
func detectInputMode(cfg ResolverConfig) InputMode {
	hasArgs := len(cfg.Args) > 0
	hasList := cfg.UseStdin || cfg.ListPath != ""

	switch {
	case hasArgs && hasList:
		return InputModeMixed
	case hasArgs:
		return InputModeArgs
	case hasList:
		return InputModeList
	}
	return InputModeUnknown
}

// readList parses targets from the configured list (stdin or file)
func readList(cfg ResolverConfig) ([]RepoRef, error) {
	var reader io.Reader

	if cfg.UseStdin {
		reader = cfg.Stdin
		if reader == nil {
			reader = os.Stdin
		}
	} else {
		file, err := os.Open(cfg.ListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file %s: %w", cfg.ListPath, err)
		}
		defer file.Close()
		reader = file
	}

	return ParseRepoLines(reader)
}

// deduplicateRefs removes duplicate targets while preserving order
func deduplicateRefs(refs []RepoRef) []RepoRef {
	seen := make(map[string]bool)
	var unique []RepoRef

	for _, ref := range refs {
		if !seen[ref.key()] {
			seen[ref.key()] = true
			unique = append(unique, ref)
		}
	}

	return unique
}
