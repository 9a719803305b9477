package reconcile_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
)

// genRecords draws a random interleaving of metadata, statistic and
// malformed records.
func genRecords(t *rapid.T) []histlog.Record {
	n := rapid.IntRange(0, 64).Draw(t, "n")
	records := make([]histlog.Record, 0, n)

	for i := range n {
		switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("shape-%d", i)) {
		case 0:
			records = append(records, histlog.Record{Meta: &histlog.CommitMeta{
				Hash:      fmt.Sprintf("commit-%d", i),
				Timestamp: int64(1000 + i),
				Author:    rapid.SampledFrom([]string{"alice", "bob", "carol"}).Draw(t, fmt.Sprintf("author-%d", i)),
				Message:   fmt.Sprintf("change %d", i),
			}})
		case 1:
			records = append(records, histlog.Record{Stat: &histlog.FileStat{
				Additions: rapid.IntRange(0, 500).Draw(t, fmt.Sprintf("adds-%d", i)),
				Deletions: rapid.IntRange(0, 500).Draw(t, fmt.Sprintf("dels-%d", i)),
				Path:      fmt.Sprintf("file-%d.go", rapid.IntRange(0, 9).Draw(t, fmt.Sprintf("file-%d", i))),
			}})
		default:
			records = append(records, histlog.Record{})
		}
	}

	return records
}

// TestProperty_OutputCountMatchesTrailingStats verifies that the output has
// exactly one row per statistic record at or after the first metadata record.
func TestProperty_OutputCountMatchesTrailingStats(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		got := reconcile.Reconcile(records)

		firstMeta := -1

		for i, rec := range records {
			if rec.Meta != nil {
				firstMeta = i

				break
			}
		}

		want := 0

		if firstMeta >= 0 {
			for _, rec := range records[firstMeta:] {
				if rec.Stat != nil {
					want++
				}
			}
		}

		require.Len(t, got, want)
	})
}

// TestProperty_NearestPrecedingMetadataWins verifies that every output row
// carries the metadata of the closest preceding metadata record.
func TestProperty_NearestPrecedingMetadataWins(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		got := reconcile.Reconcile(records)

		idx := 0

		var current *histlog.CommitMeta

		for _, rec := range records {
			if rec.Meta != nil {
				current = rec.Meta
			}

			if rec.Stat == nil || current == nil {
				continue
			}

			require.Less(t, idx, len(got))
			require.Equal(t, current.Hash, got[idx].Hash)
			require.Equal(t, current.Timestamp, got[idx].Timestamp)
			require.Equal(t, current.Author, got[idx].Author)
			require.Equal(t, current.Message, got[idx].Message)
			idx++
		}

		require.Len(t, got, idx)
	})
}

// TestProperty_StatOrderPreserved verifies that output rows keep the input
// order of their statistic records.
func TestProperty_StatOrderPreserved(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		got := reconcile.Reconcile(records)

		sawMeta := false
		wantPaths := make([]string, 0, len(records))

		for _, rec := range records {
			if rec.Meta != nil {
				sawMeta = true
			}

			if rec.Stat != nil && sawMeta {
				wantPaths = append(wantPaths, rec.Stat.Path)
			}
		}

		gotPaths := make([]string, 0, len(got))
		for _, cr := range got {
			gotPaths = append(gotPaths, cr.Path)
		}

		require.Equal(t, wantPaths, gotPaths)
	})
}

// TestProperty_NoEmptyMetadataFields verifies that reconciled rows never
// carry unset metadata.
func TestProperty_NoEmptyMetadataFields(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)

		for _, cr := range reconcile.Reconcile(records) {
			require.NotEmpty(t, cr.Hash)
			require.NotEmpty(t, cr.Author)
			require.NotEmpty(t, cr.Message)
			require.NotZero(t, cr.Timestamp)
			require.NotEmpty(t, cr.Path)
		}
	})
}
