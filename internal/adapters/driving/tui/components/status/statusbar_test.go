package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"ready", StateReady, "", "Ready"},
		{"ready with message", StateReady, "2 documents", "2 documents"},
		{"asking", StateAsking, "", "Thinking..."},
		{"answered", StateAnswered, "semantic, 2 references", "semantic, 2 references"},
		{"error", StateError, "boom", "Error: boom"},
		{"error without message", StateError, "", "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetSession("default")
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			view := bar.View()
			assert.Contains(t, view, tt.want)
			assert.Contains(t, view, "[default]")
		})
	}
}

func TestBar_HintsFollowState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "enter: ask")

	bar.SetState(StateAsking)
	assert.NotContains(t, bar.View(), "enter: ask")
	assert.Contains(t, bar.View(), "esc: quit")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}
