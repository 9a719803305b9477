package summary_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitledger/pkg/render"
	"github.com/Sumatoshi-tech/gitledger/pkg/summary"
)

func TestSerialize_UnknownFormat(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(summary.Summarize(sampleRecords()), "csv", &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "table")
}

func TestSerialize_JSON(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatJSON, &buf)
	require.NoError(t, err)

	var decoded summary.Summary

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4, decoded.Totals.Records)
	assert.Equal(t, 3, decoded.Totals.Commits)
	require.Len(t, decoded.Authors, 2)
	assert.Equal(t, "Alice", decoded.Authors[0].Name)
}

func TestSerialize_YAML(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatYAML, &buf)
	require.NoError(t, err)

	var decoded summary.Summary

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Totals.BinaryChanges)
	require.Len(t, decoded.Files, 3)
	assert.Equal(t, "src/main.go", decoded.Files[0].Path)
}

func TestSerialize_Table(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatTable, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Authors:")
	assert.Contains(t, out, "Languages:")
	assert.Contains(t, out, "Files:")
	assert.Contains(t, out, "Totals:")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Markdown")
	assert.Contains(t, out, "records: 4")
	assert.Contains(t, out, "2015-10-29T13:20:00Z to 2015-10-31T13:20:00Z")
}

func TestSerialize_TableTopCapsRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sz := summary.Serializer{Top: 1}

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatTable, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "Bob")
	assert.Contains(t, out, "top 1 of 2")
	assert.Contains(t, out, "top 1 of 3")
}

func TestSerialize_TableNegativeTopUnlimited(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sz := summary.Serializer{Top: -1}

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatTable, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "2 total")
	assert.Contains(t, out, "3 total")
}

func TestSerialize_NilSummary(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(nil, render.FormatJSON, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"totals"`)
}

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"yaml", "json", "table", "plot"}, summary.Formats())
}
