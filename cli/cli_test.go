package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	return names
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := commandNames()
	for _, want := range []string{
		"run", "schedule", "store", "chat", "serve",
		"status", "recreate", "search", "discover",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRunCmd_Flags(t *testing.T) {
	for _, name := range []string{"page-start", "page-end", "no-dedup"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run should have flag %s", name)
	}
}

func TestSearchCmd_LimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestStoreCmd_RequiresFile(t *testing.T) {
	err := storeCmd.Args(storeCmd, nil)
	assert.Error(t, err)
	assert.NoError(t, storeCmd.Args(storeCmd, []string{"docs.json"}))
}

func TestDiscoverCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range discoverCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"youtube", "trends", "news", "article"} {
		assert.Contains(t, names, want)
	}
}

func TestRecreateCmd_RefusesWithoutConfirmation(t *testing.T) {
	flag := recreateCmd.Flags().Lookup("yes")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
