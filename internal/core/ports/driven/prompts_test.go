package driven

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateVerbs(t *testing.T) {
	tests := []struct {
		template string
		n        int
		ok       bool
	}{
		{"none", 0, true},
		{"%s and %s", 2, true},
		{"100%% of %s", 1, true},
		{"%%s", 0, true},
		{"%s %d", 1, false},
		{"%v", 0, false},
		{"trailing %", 0, false},
		{"%5s", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			n, ok := TemplateVerbs(tt.template)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.n, n)
			}
		})
	}
}

func TestTemplateVerbs_DefaultAnswerPrompt(t *testing.T) {
	n, ok := TemplateVerbs(DefaultAnswerPrompt)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}
