package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "analyze", "zoneop", "import", "report"} {
		assert.True(t, names[want], "command %s not registered", want)
	}
}

func TestImportSubcommands(t *testing.T) {
	sub := make(map[string]bool)
	for _, c := range importCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["zones"])
	assert.True(t, sub["readings"])
}

func TestZoneopArgs(t *testing.T) {
	// Operation plus at least one zone.
	require.Error(t, zoneopCmd.Args(zoneopCmd, []string{"union"}))
	require.NoError(t, zoneopCmd.Args(zoneopCmd, []string{"buffer-1km", "z1"}))
	require.NoError(t, zoneopCmd.Args(zoneopCmd, []string{"union", "z1", "z2"}))
}
