package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"2", 2},
		{"3", 3},
		{"0", 1},
		{"4", 1},
		{"abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.input, 3, 1))
		})
	}
}

func TestReadLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  first  \nsecond"))
	assert.Equal(t, "first", readLine(reader))
	assert.Equal(t, "second", readLine(reader))
	assert.Equal(t, "", readLine(reader))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("12345678"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"Yes\n": true,
		" YES":  true,
		"n\n":   false,
		"\n":    false,
		"yep\n": false,
	}
	for input, want := range tests {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(input))
		assert.Equal(t, want, confirm(cmd), "input %q", input)
	}
}

func TestReadSecret_FallsBackToLine(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("ignored"))
	reader := bufio.NewReader(strings.NewReader("secret-value\n"))

	assert.Equal(t, "secret-value", readSecret(cmd, reader))
}

func TestIsTerminal_Buffers(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(new(bytes.Buffer))

	assert.False(t, isTerminal(cmd))
}
