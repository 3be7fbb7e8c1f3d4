// Package budget fits variable-length source text into fixed context-window
// budgets before it is handed to a completion provider.
//
// The ceilings below bound the provider cost of a single report run. Item
// level analysis uses the precise tokenizer path; the final assembly prompt
// uses a cheaper character heuristic.
package budget

const (
	// HeadRatio is the share of a word or token budget kept from the start of
	// a text; the remainder is kept from the end.
	HeadRatio = 0.6

	// PostWordCap bounds a single issue or comment body after quote stripping.
	PostWordCap = 500

	// PatchTokenCap bounds a commit patch fed to the commit analysis chain.
	PatchTokenCap = 12_000

	// CombinedWordCap bounds commit and issue summaries that share one prompt.
	CombinedWordCap = 44_000

	// CommitsShare is the portion of CombinedWordCap reserved for commits.
	CommitsShare = 0.6

	// CategoryCharCap stops appending item summaries to a category block once
	// the block grows past this many characters.
	CategoryCharCap = 45_000

	// CorrelatorUnits is the total allocation for the cross-source prompt.
	CorrelatorUnits = 16_000

	// CharsPerUnit converts allocation units into characters.
	CharsPerUnit = 3

	// LongTokenRunes is the length at which a whitespace-delimited token is
	// treated as encoded garbage and dropped.
	LongTokenRunes = 150

	// CodeFence marks quoted blocks in GitHub markdown posts.
	CodeFence = "```"
)
