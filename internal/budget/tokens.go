package budget

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts text to model tokens and back
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// cl100kEncoding is the encoding used by the gpt-3.5/gpt-4 model families
const cl100kEncoding = "cl100k_base"

var (
	cl100k     *tiktokenTokenizer
	cl100kErr  error
	cl100kOnce sync.Once
)

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// CL100K returns the shared cl100k_base tokenizer, loading it on first use
func CL100K() (Tokenizer, error) {
	cl100kOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(cl100kEncoding)
		if err != nil {
			cl100kErr = fmt.Errorf("failed to load %s encoding: %w", cl100kEncoding, err)
			return
		}
		cl100k = &tiktokenTokenizer{enc: enc}
	})
	if cl100kErr != nil {
		return nil, cl100kErr
	}
	return cl100k, nil
}

// Encode treats special-token text as ordinary text
func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// CountTokens returns the number of tokens in text
func CountTokens(tok Tokenizer, text string) int {
	if text == "" {
		return 0
	}
	return len(tok.Encode(text))
}
