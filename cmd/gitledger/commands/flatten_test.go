package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitledger/cmd/gitledger/commands"
	"github.com/Sumatoshi-tech/gitledger/pkg/config"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

// sampleHistoryLog is one commit touching a text file and a binary file.
const sampleHistoryLog = "\t\t\t4f190ec8aa8b0dee2d406ae7e17b60b2a09cd778\t1446124800\tAlice\tAdd parser\n" +
	"10\t2\tsrc/main.go\n" +
	"-\t-\tassets/logo.png\n"

func writeHistoryLog(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// executeCommand runs a command with captured output streams.
func executeCommand(tb testing.TB, cmd *cobra.Command, args ...string) (string, string, error) {
	tb.Helper()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestFlattenCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewFlattenCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "flatten [log-file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestFlattenCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewFlattenCommand()

	format := cmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "yaml", format.DefValue)

	for _, name := range []string{"repo", "max-line-size", "since", "first-parent", "limit"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestFlattenCommand_JSONOutput(t *testing.T) {
	t.Parallel()

	logPath := writeHistoryLog(t, "history.log", sampleHistoryLog)

	out, _, err := executeCommand(t, commands.NewFlattenCommand(), logPath, "--format", "json")
	require.NoError(t, err)

	var records []histlog.ChangeRecord

	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)

	assert.Equal(t, "src/main.go", records[0].Path)
	assert.Equal(t, 10, records[0].Additions)
	assert.Equal(t, 2, records[0].Deletions)
	assert.Equal(t, "Alice", records[0].Author)
	assert.True(t, records[1].Binary)
	assert.Equal(t, records[0].Hash, records[1].Hash)
}

func TestFlattenCommand_ReadsStdin(t *testing.T) {
	t.Parallel()

	cmd := commands.NewFlattenCommand()
	cmd.SetIn(strings.NewReader(sampleHistoryLog))

	out, _, err := executeCommand(t, cmd, "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "additions,deletions,filename,commit_id,timestamp,author,message", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "10,2,src/main.go"))
	assert.True(t, strings.HasPrefix(lines[2], "-,-,assets/logo.png"))
}

func TestFlattenCommand_LZ4Input(t *testing.T) {
	t.Parallel()

	var compressed bytes.Buffer

	zw := lz4.NewWriter(&compressed)
	_, err := zw.Write([]byte(sampleHistoryLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	logPath := writeHistoryLog(t, "history.log.lz4", compressed.String())

	out, _, err := executeCommand(t, commands.NewFlattenCommand(), logPath, "--format", "json")
	require.NoError(t, err)

	var records []histlog.ChangeRecord

	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 2)
}

func TestFlattenCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	logPath := writeHistoryLog(t, "history.log", sampleHistoryLog)

	_, _, err := executeCommand(t, commands.NewFlattenCommand(), logPath, "--format", "xml")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestFlattenCommand_InvalidMaxLineSize(t *testing.T) {
	t.Parallel()

	logPath := writeHistoryLog(t, "history.log", sampleHistoryLog)

	_, _, err := executeCommand(t, commands.NewFlattenCommand(), logPath, "--max-line-size", "many")
	require.ErrorIs(t, err, config.ErrInvalidMaxLineSize)
}

func TestFlattenCommand_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := executeCommand(t, commands.NewFlattenCommand(), filepath.Join(t.TempDir(), "absent.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open history log")
}
