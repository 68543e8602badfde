package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	for _, v := range []string{"dev", "1.4.0-rc.1"} {
		version = v

		out, err := execute(t, "", "version")
		require.NoError(t, err)
		assert.Equal(t, "deckqa version "+v+"\n", out)
	}
}
