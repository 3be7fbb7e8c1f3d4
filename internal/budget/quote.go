package budget

import (
	"strings"
	"unicode/utf8"
)

// StripQuoted removes quoted regions from text.
//
// Every line containing marker flips the inside-quote state and is itself
// dropped; lines inside a quoted region are dropped. Kept lines lose tokens of
// LongTokenRunes runes or more and are rejoined with single spaces. An
// unmatched marker leaves the state inside for the rest of the text, so the
// remainder is dropped.
func StripQuoted(text, marker string) string {
	var b strings.Builder
	inside := false

	for _, line := range splitLines(text) {
		if marker != "" && strings.Contains(line, marker) {
			inside = !inside
			continue
		}
		if inside {
			continue
		}

		fields := strings.Fields(line)
		kept := fields[:0]
		for _, word := range fields {
			if utf8.RuneCountInString(word) < LongTokenRunes {
				kept = append(kept, word)
			}
		}
		b.WriteString(strings.Join(kept, " "))
		b.WriteByte('\n')
	}

	return b.String()
}

// StripAndFit strips quoted regions and then fits the rest by words
func StripAndFit(text, marker string, maxWords int, headRatio float64) string {
	return FitByWords(StripQuoted(text, marker), maxWords, headRatio)
}

// splitLines splits on \n, drops a trailing \r per line, and ignores the
// empty element after a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
