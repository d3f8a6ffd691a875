package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}

func TestServeFlags(t *testing.T) {
	for _, name := range []string{"data-dir", "runtime-dir", "port", "password", "create-db"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestRunServeRejectsInvalidSettings(t *testing.T) {
	// A port that does not parse cannot pass resolution.
	t.Setenv("PGEMBED_PORT", "not-a-number")

	err := runServe(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve settings")
}
