package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridflow/internal/cli"
	"github.com/specialistvlad/gridflow/internal/testutil"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600), "failed to set up test file")
	return path
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `
workflow {
  publish "greeting" {}
  main {
    greeting = value(upper("hello"))
  }
}
`)
	out := &testutil.SafeBuffer{}

	err := run(context.Background(), out, []string{"--publisher", "print", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), "greeting = HELLO")
}

func TestRun_ParseFailureExitCode(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `
workflow {
  main {
	// Missing closing brace here
`)
	out := &testutil.SafeBuffer{}

	err := run(context.Background(), out, []string{path})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &testutil.SafeBuffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_UsageErrorExitCode(t *testing.T) {
	t.Parallel()

	out := &testutil.SafeBuffer{}

	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}
