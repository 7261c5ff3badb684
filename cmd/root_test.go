package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"resolve", "tile", "terrain", "load", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "riskpoint", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestResolveCommand_Flags(t *testing.T) {
	require.NotNil(t, resolveCmd.Flags().Lookup("lat"))
	require.NotNil(t, resolveCmd.Flags().Lookup("lon"))

	limit := resolveCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "3", limit.DefValue)
}

func TestTileCommand_Flags(t *testing.T) {
	zoom := tileCmd.Flags().Lookup("zoom")
	require.NotNil(t, zoom)
	assert.Equal(t, "14", zoom.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestLoadCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range loadCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["shelters"])
	assert.True(t, names["risks"])
}
