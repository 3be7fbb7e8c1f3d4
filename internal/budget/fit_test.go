package budget

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// wordTokenizer treats every whitespace-delimited word as one token
type wordTokenizer struct {
	vocab []string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (w *wordTokenizer) Encode(text string) []int {
	var out []int
	for _, word := range strings.Fields(text) {
		id, ok := w.ids[word]
		if !ok {
			id = len(w.vocab)
			w.vocab = append(w.vocab, word)
			w.ids[word] = id
		}
		out = append(out, id)
	}
	return out
}

func (w *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = w.vocab[id]
	}
	return strings.Join(words, " ")
}

// numberedWords returns "w0 w1 ... w(n-1)"
func numberedWords(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(words, " ")
}

func TestFitByWords(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxWords  int
		headRatio float64
		expected  string
	}{
		{
			name:      "fits unchanged including whitespace",
			text:      "alpha  beta\ngamma",
			maxWords:  3,
			headRatio: 0.6,
			expected:  "alpha  beta\ngamma",
		},
		{
			name:      "head and tail kept, middle dropped",
			text:      numberedWords("w", 10),
			maxWords:  5,
			headRatio: 0.6,
			expected:  "w0 w1 w2 w8 w9",
		},
		{
			name:      "head ratio rounds up",
			text:      numberedWords("w", 10),
			maxWords:  4,
			headRatio: 0.6,
			expected:  "w0 w1 w2 w9",
		},
		{
			name:      "all head",
			text:      numberedWords("w", 6),
			maxWords:  3,
			headRatio: 1.0,
			expected:  "w0 w1 w2",
		},
		{
			name:      "all tail",
			text:      numberedWords("w", 6),
			maxWords:  3,
			headRatio: 0,
			expected:  "w3 w4 w5",
		},
		{
			name:      "zero budget",
			text:      "some words",
			maxWords:  0,
			headRatio: 0.6,
			expected:  "",
		},
		{
			name:      "empty text",
			text:      "",
			maxWords:  10,
			headRatio: 0.6,
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitByWords(tt.text, tt.maxWords, tt.headRatio)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHeadCount_OutOfRangeRatios(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		expected int
	}{
		{name: "NaN keeps only the tail", ratio: math.NaN(), expected: 0},
		{name: "negative", ratio: -0.5, expected: 0},
		{name: "above one", ratio: 1.7, expected: 10},
		{name: "infinite", ratio: math.Inf(1), expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headCount(10, tt.ratio); got != tt.expected {
				t.Errorf("headCount(10, %v) = %d, expected %d", tt.ratio, got, tt.expected)
			}
			got := FitByWords(numberedWords("w", 30), 10, tt.ratio)
			if n := len(strings.Fields(got)); n != 10 {
				t.Errorf("expected 10 words, got %d", n)
			}
		})
	}
}

func TestFitByWords_NeverExceedsBudget(t *testing.T) {
	for n := 0; n <= 40; n += 3 {
		text := numberedWords("x", n)
		for max := 1; max <= 20; max++ {
			for _, ratio := range []float64{0, 0.25, 0.6, 0.99, 1} {
				got := FitByWords(text, max, ratio)
				if words := len(strings.Fields(got)); words > max {
					t.Fatalf("n=%d max=%d ratio=%v: got %d words", n, max, ratio, words)
				}
				if n <= max && got != text {
					t.Fatalf("n=%d max=%d: fitting text was modified", n, max)
				}
			}
		}
	}
}

func TestFitByTokens(t *testing.T) {
	tok := newWordTokenizer()

	short := "one two three"
	if got := FitByTokens(tok, short, 5, 0.6); got != short {
		t.Errorf("expected fitting text unchanged, got %q", got)
	}

	long := numberedWords("t", 20)
	got := FitByTokens(tok, long, 10, 0.6)
	expected := "t0 t1 t2 t3 t4 t5 t16 t17 t18 t19"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	if n := CountTokens(tok, got); n != 10 {
		t.Errorf("expected 10 tokens, got %d", n)
	}
}

func TestFitByTokens_CL100K(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tokenizer download in short mode")
	}
	tok, err := CL100K()
	if err != nil {
		t.Skipf("cl100k_base encoding unavailable: %v", err)
	}

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	got := FitByTokens(tok, text, 100, HeadRatio)

	if n := CountTokens(tok, got); n > 110 {
		t.Errorf("expected roughly 100 tokens after fitting, got %d", n)
	}
	if !strings.HasPrefix(got, "The quick brown fox") {
		t.Errorf("expected head of text to be retained, got %q", got[:40])
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "lazy dog.") {
		t.Errorf("expected tail of text to be retained")
	}
}

func TestFitPairByWords(t *testing.T) {
	tests := []struct {
		name        string
		aWords      int
		bWords      int
		combinedMax int
		split       float64
		expectA     int
		expectB     int
	}{
		{
			name:        "commits over share, issues under remaining budget",
			aWords:      50_000,
			bWords:      2_000,
			combinedMax: CombinedWordCap,
			split:       CommitsShare,
			expectA:     26_400,
			expectB:     2_000,
		},
		{
			name:        "both over their shares",
			aWords:      50_000,
			bWords:      30_000,
			combinedMax: CombinedWordCap,
			split:       CommitsShare,
			expectA:     26_400,
			expectB:     17_600,
		},
		{
			name:        "commits under share, issues truncated",
			aWords:      10_000,
			bWords:      40_000,
			combinedMax: CombinedWordCap,
			split:       CommitsShare,
			expectA:     10_000,
			expectB:     34_000,
		},
		{
			name:        "fits unchanged",
			aWords:      100,
			bWords:      200,
			combinedMax: 1_000,
			split:       0.6,
			expectA:     100,
			expectB:     200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := numberedWords("a", tt.aWords)
			b := numberedWords("b", tt.bWords)

			gotA, gotB := FitPairByWords(a, b, tt.combinedMax, tt.split)

			nA := len(strings.Fields(gotA))
			nB := len(strings.Fields(gotB))
			if nA != tt.expectA {
				t.Errorf("expected a to have %d words, got %d", tt.expectA, nA)
			}
			if nB != tt.expectB {
				t.Errorf("expected b to have %d words, got %d", tt.expectB, nB)
			}
			if nA+nB > tt.combinedMax {
				t.Errorf("combined %d exceeds cap %d", nA+nB, tt.combinedMax)
			}
			if float64(tt.aWords) <= float64(tt.combinedMax)*tt.split && gotA != a {
				t.Error("a within its share must be returned unchanged")
			}
			if !strings.HasPrefix(gotA, "a0 a1") {
				t.Error("truncation should keep leading words of a")
			}
		})
	}
}

func TestFitPairByWords_Property(t *testing.T) {
	for aN := 0; aN <= 30; aN += 5 {
		for bN := 0; bN <= 30; bN += 5 {
			a := numberedWords("a", aN)
			b := numberedWords("b", bN)
			gotA, gotB := FitPairByWords(a, b, 20, 0.6)
			if total := len(strings.Fields(gotA)) + len(strings.Fields(gotB)); total > 20 {
				t.Fatalf("a=%d b=%d: total %d exceeds 20", aN, bN, total)
			}
			if aN <= 12 && gotA != a {
				t.Fatalf("a=%d b=%d: a within share was modified", aN, bN)
			}
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo wörld", 5); got != "héllo" {
		t.Errorf("expected 'héllo', got %q", got)
	}
	if got := TruncateRunes("abc", 10); got != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
	if got := TruncateRunes("abc", 0); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
