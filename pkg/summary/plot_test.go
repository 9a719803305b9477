package summary_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitledger/pkg/render"
	"github.com/Sumatoshi-tech/gitledger/pkg/summary"
)

func TestSerialize_Plot(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sz  summary.Serializer
	)

	err := sz.Serialize(summary.Summarize(sampleRecords()), render.FormatPlot, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "gitledger summary")
	assert.Contains(t, out, "Authors")
	assert.Contains(t, out, "Languages")
	assert.Contains(t, out, "Churn")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Markdown")
}

func TestBuildPage_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	page := summary.BuildPage(&summary.Summary{})
	require.NoError(t, page.Render(&buf))

	assert.Contains(t, buf.String(), "No data")
}
