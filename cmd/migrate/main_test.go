package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"up", "down", "status"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.Error(t, cmd.Args(cmd, []string{"extra"}), "%s takes no arguments", name)
	}

	flag := root.PersistentFlags().Lookup("timeout")
	require.NotNil(t, flag)
	assert.Equal(t, "5m0s", flag.DefValue)
}
