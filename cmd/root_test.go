package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dispatch version 1.2.3\n", out.String())
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "chat", "agents", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestAgentsSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range agentsCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"active", "completed", "stats", "history", "get"} {
		assert.True(t, names[want], "missing agents subcommand %s", want)
	}
}
