package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/gophauth/internal/client/credentials"
	"github.com/atinyakov/gophauth/internal/client/kv"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)

	for _, sub := range []string{"shell", "logout", "version"} {
		assert.Contains(t, out, sub, "help missing %q command", sub)
	}
	for _, flag := range []string{"--url", "--store", "--no-color", "--config"} {
		assert.Contains(t, out, flag)
	}
}

func TestVersionCommand(t *testing.T) {
	version, buildDate = "", ""
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: N/A")
	assert.Contains(t, out, "Build Date: N/A")
}

func TestShellCommand_QuitsOnInput(t *testing.T) {
	for _, args := range [][]string{
		{"--store", "memory", "--no-color"},
		{"shell", "--store", "memory"},
	} {
		out, err := execute(t, "help\nquit\n", args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Welcome back")
		assert.Contains(t, out, "gophauth> ")
		assert.Contains(t, out, "Bye")
	}
}

func TestLogoutCommand_ClearsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	store := kv.NewFileStore(afero.NewOsFs(), path)
	require.NoError(t, credentials.NewSession(store).Store(ctx, "jwt-1"))

	out, err := execute(t, "", "logout", "--store", "file", "--store-path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, ok, err := credentials.NewSession(store).Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "", "logout", "--store", "floppy")
	assert.ErrorContains(t, err, "unknown store backend")

	_, err = execute(t, "", "logout", "--store", "memory", "--log-level", "loud")
	assert.ErrorContains(t, err, "parse log level")
}
