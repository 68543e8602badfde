package tiktoken

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCounter skips when the BPE ranks cannot be loaded (offline runs).
func newCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := New("")
	if err != nil {
		t.Skipf("cl100k_base unavailable: %v", err)
	}
	return c
}

func TestCounter_Count(t *testing.T) {
	c := newCounter(t)

	assert.Zero(t, c.Count(""))
	assert.Equal(t, 2, c.Count("hello world"))
	assert.Greater(t, c.Count(strings.Repeat("revenue ", 50)), 40)
}

func TestCounter_Truncate(t *testing.T) {
	c := newCounter(t)
	text := "Revenue grew twenty percent in the third quarter"

	assert.Equal(t, text, c.Truncate(text, 100))
	assert.Empty(t, c.Truncate(text, 0))

	short := c.Truncate(text, 3)
	require.NotEmpty(t, short)
	assert.True(t, strings.HasPrefix(text, short))
	assert.LessOrEqual(t, c.Count(short), 3)
}

func TestCounter_TruncateMultibyte(t *testing.T) {
	c := newCounter(t)
	text := "収益は二十パーセント増加しました"

	for n := 1; n < 6; n++ {
		got := c.Truncate(text, n)
		assert.True(t, strings.HasPrefix(text, got), "n=%d", n)
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New("no_such_encoding")
	assert.ErrorContains(t, err, "no_such_encoding")
}
