package format

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the largest chunk sent as one chat message
const MaxMessageRunes = 4000

// Chunk splits text into pieces of at most max runes. Splits prefer line
// boundaries; a single line longer than max is cut at a word boundary when
// one exists, otherwise mid-word.
func Chunk(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" || max <= 0 {
		return nil
	}
	if utf8.RuneCountInString(text) <= max {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if currentLen+n <= max {
			current.WriteString(line)
			currentLen += n
			continue
		}

		flush()
		for utf8.RuneCountInString(line) > max {
			head, rest := splitLine(line, max)
			if s := strings.TrimSpace(head); s != "" {
				chunks = append(chunks, s)
			}
			line = rest
		}
		current.WriteString(line)
		currentLen = utf8.RuneCountInString(line)
	}
	flush()

	return chunks
}

// splitLine cuts line after at most max runes, backing up to the last space
// in the second half of the window when there is one
func splitLine(line string, max int) (string, string) {
	cut := len(line)
	count := 0
	for i := range line {
		if count == max {
			cut = i
			break
		}
		count++
	}

	if space := strings.LastIndexByte(line[:cut], ' '); space > cut/2 {
		cut = space + 1
	}
	return line[:cut], line[cut:]
}
