package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/scattermul/driver"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestCommandMultiplies(t *testing.T) {
	out, err := runCmd(t, "--np", "2", "--seed", "3", "--log-level", "error", "2", "2", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Matrix A (2x2):")
	require.Contains(t, out, "Matrix B (2x2):")
	require.Contains(t, out, "Result Matrix C (2x2):")
}

func TestCommandUsage(t *testing.T) {
	out, err := runCmd(t, "--np", "2", "--log-level", "error", "2")
	require.ErrorIs(t, err, driver.ErrUsage)
	require.Equal(t, driver.Usage, strings.TrimSpace(out))
}

func TestCommandConfigFileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("np: 2\nmax_value: 1\nlog_level: error\n"), 0o600))

	// max_value 1 makes every entry zero
	out, err := runCmd(t, "--config", path, "2", "3", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Result Matrix C (2x2):\n0 0\n0 0\n")

	// an explicit flag beats the file: three ranks cannot split two rows
	_, err = runCmd(t, "--config", path, "--np", "3", "2", "3", "2")
	require.Error(t, err)
}
