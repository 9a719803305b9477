package histlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

func TestParseStamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want histlog.CommitStamp
	}{
		{
			name: "negative_offset",
			line: "1446124800 -0800\tPedro Rijo",
			want: histlog.CommitStamp{Timestamp: 1446124800, Offset: "-0800", Author: "Pedro Rijo"},
		},
		{
			name: "positive_offset",
			line: "1577836800 +0200\tAlice",
			want: histlog.CommitStamp{Timestamp: 1577836800, Offset: "+0200", Author: "Alice"},
		},
		{
			name: "author_with_spaces",
			line: "100 +0000\tJean-Luc von Neumann Jr.",
			want: histlog.CommitStamp{Timestamp: 100, Offset: "+0000", Author: "Jean-Luc von Neumann Jr."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := histlog.ParseStamp(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStamp_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "missing_tab", line: "100 +0200 Alice"},
		{name: "missing_sign", line: "100 0200\tAlice"},
		{name: "missing_author", line: "100 +0200\t"},
		{name: "non_numeric_timestamp", line: "soon +0200\tAlice"},
		{name: "tab_before_offset", line: "100\t+0200\tAlice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := histlog.ParseStamp(tt.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, histlog.ErrBadStamp)
		})
	}
}
