package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitledger/pkg/callgraph"
	"github.com/Sumatoshi-tech/gitledger/pkg/config"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

func TestRecursionCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := NewRecursionCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "recursion", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRecursionCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := NewRecursionCommand()

	format := cmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	for _, name := range []string{"uri", "username", "password", "database", "database-class", "timeout", "color", "no-color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRecursionCommand_GraphOptionsMerge(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Graph: config.GraphConfig{
			URI:           "bolt://configured:7687",
			Username:      "neo4j",
			Password:      "secret",
			DatabaseClass: "Database",
			Timeout:       30 * time.Second,
		},
	}

	rc := &RecursionCommand{
		uri:           "bolt://flagged:7687",
		databaseClass: "Store",
		timeout:       5 * time.Second,
	}

	opts := rc.graphOptions(cfg)

	assert.Equal(t, "bolt://flagged:7687", opts.URI)
	assert.Equal(t, "neo4j", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, "Store", opts.DatabaseClass)
	assert.Equal(t, 5*time.Second, opts.Timeout)
}

// The renderText tests stay sequential: they write the color.NoColor global.
func TestRecursionCommand_RenderText_NoCalls(t *testing.T) {
	rc := &RecursionCommand{format: formatText, nocolor: true}

	var buf bytes.Buffer

	require.NoError(t, rc.render(nil, "Database", &buf))
	assert.Contains(t, buf.String(), "No recursive calls into Database methods found")
}

func TestRecursionCommand_RenderText_Calls(t *testing.T) {
	rc := &RecursionCommand{format: formatText, nocolor: true}

	calls := []callgraph.RecursiveCall{
		{Caller: "processQueue", DBMethod: "Database.save"},
		{Caller: "syncLedger", DBMethod: "Database.update"},
	}

	var buf bytes.Buffer

	require.NoError(t, rc.render(calls, "Database", &buf))

	out := buf.String()
	assert.Contains(t, out, "Recursive callers of Database methods (2):")
	assert.Contains(t, out, "processQueue")
	assert.Contains(t, out, "Database.save")
	assert.Contains(t, out, "syncLedger")
}

func TestRecursionCommand_RenderJSON_EmptyCalls(t *testing.T) {
	t.Parallel()

	rc := &RecursionCommand{format: render.FormatJSON}

	var buf bytes.Buffer

	require.NoError(t, rc.render(nil, "Database", &buf))
	assert.JSONEq(t, "[]", buf.String())
}

func TestRecursionCommand_RenderUnknownFormat(t *testing.T) {
	t.Parallel()

	rc := &RecursionCommand{format: "xml"}

	var buf bytes.Buffer

	err := rc.render(nil, "Database", &buf)
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestRecursionCommand_InvalidScheme(t *testing.T) {
	t.Parallel()

	cmd := NewRecursionCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--uri", "http://localhost:7687"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create neo4j driver")
}
