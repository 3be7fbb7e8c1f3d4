package budget

import (
	"math"
	"strings"
)

// headCount returns how many of max units come from the start of a text
func headCount(max int, headRatio float64) int {
	if !(headRatio > 0) {
		return 0
	}
	head := int(math.Ceil(float64(max) * headRatio))
	if head > max || math.IsInf(headRatio, 1) {
		head = max
	}
	if head < 0 {
		head = 0
	}
	return head
}

// FitByWords shrinks text to at most maxWords whitespace-delimited words.
// Text that already fits is returned unchanged. Otherwise the first
// ceil(maxWords*headRatio) words and the remaining budget from the end are
// kept, the middle is dropped, and the result is joined with single spaces.
func FitByWords(text string, maxWords int, headRatio float64) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	if maxWords <= 0 {
		return ""
	}

	head := headCount(maxWords, headRatio)
	tail := maxWords - head

	kept := make([]string, 0, maxWords)
	kept = append(kept, words[:head]...)
	kept = append(kept, words[len(words)-tail:]...)
	return strings.Join(kept, " ")
}

// FitByTokens applies the FitByWords retention policy to model tokens
func FitByTokens(tok Tokenizer, text string, maxTokens int, headRatio float64) string {
	tokens := tok.Encode(text)
	if len(tokens) <= maxTokens {
		return text
	}
	if maxTokens <= 0 {
		return ""
	}

	head := headCount(maxTokens, headRatio)
	tail := maxTokens - head

	kept := make([]int, 0, maxTokens)
	kept = append(kept, tokens[:head]...)
	kept = append(kept, tokens[len(tokens)-tail:]...)
	return tok.Decode(kept)
}

// FitPairByWords fits two texts into one combined word budget.
// A pair that already fits is returned unchanged. Otherwise a receives up to
// combinedMax*split words; when a is over that share it is cut to it and b
// keeps up to the rest, and when a is under its share b is cut to whatever a
// leaves. Truncation keeps leading words.
func FitPairByWords(a, b string, combinedMax int, split float64) (string, string) {
	aWords := strings.Fields(a)
	bWords := strings.Fields(b)
	if len(aWords)+len(bWords) <= combinedMax {
		return a, b
	}
	if combinedMax <= 0 {
		return "", ""
	}

	takeA := int(float64(combinedMax) * split)
	if takeA > combinedMax {
		takeA = combinedMax
	}
	if takeA < 0 {
		takeA = 0
	}
	if len(aWords) > takeA {
		a = strings.Join(aWords[:takeA], " ")
		if rest := combinedMax - takeA; len(bWords) > rest {
			b = strings.Join(bWords[:rest], " ")
		}
		return a, b
	}

	b = strings.Join(bWords[:combinedMax-len(aWords)], " ")
	return a, b
}

// TruncateRunes keeps the first n runes of text
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
