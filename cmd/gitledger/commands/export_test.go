package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitledger/cmd/gitledger/commands"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
)

func TestExportCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewExportCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "export [repository]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestExportCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewExportCommand()

	output := cmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "-", output.DefValue)

	compress := cmd.Flags().Lookup("compress")
	require.NotNil(t, compress)
	assert.Equal(t, "false", compress.DefValue)

	for _, name := range []string{"since", "first-parent", "limit"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestExportCommand_WritesHistoryLog(t *testing.T) {
	t.Parallel()

	repoRoot := findProjectRoot(t)
	if repoRoot == "" {
		t.Skip("project git repository not found")
	}

	outPath := filepath.Join(t.TempDir(), "history.log")

	_, _, err := executeCommand(t, commands.NewExportCommand(),
		repoRoot, "--limit", "5", "-o", outPath)
	require.NoError(t, err)

	f, err := histlog.OpenFile(outPath)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	_, stats, err := reconcile.Flatten(f, nil)
	require.NoError(t, err)

	assert.Positive(t, stats.Meta)
	assert.LessOrEqual(t, stats.Meta, 5)
	assert.Zero(t, stats.Malformed)
}

func TestExportCommand_StdoutRoundTrip(t *testing.T) {
	t.Parallel()

	repoRoot := findProjectRoot(t)
	if repoRoot == "" {
		t.Skip("project git repository not found")
	}

	out, _, err := executeCommand(t, commands.NewExportCommand(), repoRoot, "--limit", "1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "\t\t\t"))

	_, stats, err := reconcile.Flatten(strings.NewReader(out), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Meta)
}

func TestExportCommand_CompressedOutput(t *testing.T) {
	t.Parallel()

	repoRoot := findProjectRoot(t)
	if repoRoot == "" {
		t.Skip("project git repository not found")
	}

	outPath := filepath.Join(t.TempDir(), "history.log.lz4")

	_, _, err := executeCommand(t, commands.NewExportCommand(), repoRoot, "--limit", "1", "-o", outPath)
	require.NoError(t, err)

	f, err := histlog.OpenFile(outPath)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	_, stats, err := reconcile.Flatten(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Meta)
}

// findProjectRoot walks up from the working directory to the enclosing git
// repository, or returns "" when there is none.
func findProjectRoot(tb testing.TB) string {
	tb.Helper()

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		gitDir := filepath.Join(dir, ".git")

		info, statErr := os.Stat(gitDir)
		if statErr == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}
