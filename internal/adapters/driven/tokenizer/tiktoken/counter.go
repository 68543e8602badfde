// Package tiktoken counts prompt tokens with OpenAI's BPE encodings.
package tiktoken

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultEncoding is the encoding used by current chat models.
const DefaultEncoding = "cl100k_base"

// Counter measures text in BPE tokens.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding. The first call may download the BPE ranks
// into the tiktoken cache directory.
func New(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %s: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text with at most n tokens.
// Decoding can split a multi-byte rune at the cut; the broken tail is dropped.
func (c *Counter) Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text
	}
	prefix := c.enc.Decode(tokens[:n])
	prefix = strings.ToValidUTF8(prefix, "")
	for !strings.HasPrefix(text, prefix) && prefix != "" {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}
