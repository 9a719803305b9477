package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

func sampleRecords() []histlog.ChangeRecord {
	return []histlog.ChangeRecord{
		{
			Additions: 10, Deletions: 2, Path: "src/main.go",
			Hash: "4f190ec8aa4f190ec8aa4f190ec8aa4f190ec8aa", Timestamp: 1446124800,
			Author: "Alice", Message: "initial commit",
		},
		{
			Additions: 0, Deletions: 0, Binary: true, Path: "assets/logo.png",
			Hash: "8a23bd1c008a23bd1c008a23bd1c008a23bd1c00", Timestamp: 1446211200,
			Author: "Bob", Message: "add, logo \"with quotes\"",
		},
	}
}

func TestRecords_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(sampleRecords(), "xml", &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "yaml")
}

func TestRecords_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(sampleRecords(), render.FormatJSON, &buf)
	require.NoError(t, err)

	var decoded []map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.EqualValues(t, 10, decoded[0]["additions"])
	assert.Equal(t, "src/main.go", decoded[0]["filename"])
	assert.Equal(t, "Alice", decoded[0]["author"])
	assert.Equal(t, true, decoded[1]["binary"])
}

func TestRecords_JSONEmptyIsArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(nil, render.FormatJSON, &buf)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", buf.String())
}

func TestRecords_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(sampleRecords(), render.FormatYAML, &buf)
	require.NoError(t, err)

	var decoded []map[string]any

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "initial commit", decoded[0]["message"])
	assert.Equal(t, 1446124800, decoded[0]["timestamp"])
}

func TestRecords_CSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(sampleRecords(), render.FormatCSV, &buf)
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t,
		[]string{"additions", "deletions", "filename", "commit_id", "timestamp", "author", "message"},
		rows[0])
	assert.Equal(t, "10", rows[1][0])
	assert.Equal(t, "1446124800", rows[1][4])

	// Binary files render "-" counts, and commas in messages survive quoting.
	assert.Equal(t, "-", rows[2][0])
	assert.Equal(t, "-", rows[2][1])
	assert.Equal(t, `add, logo "with quotes"`, rows[2][6])
}

func TestRecords_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Records(sampleRecords(), render.FormatTable, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "src/main.go")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "2 changes")
	assert.Contains(t, out, "2015-10-29")
}

func TestRecords_TableTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	records[0].Message = "this subject line keeps going and going and going far past any sane width"

	var buf bytes.Buffer

	err := render.Records(records, render.FormatTable, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "…")
	assert.NotContains(t, buf.String(), "past any sane width")
}
