// Package reconcile joins the two line shapes of a history export into flat
// per-file change records.
//
// An export interleaves commit metadata lines with the numstat lines of the
// files each commit changed, so a numstat line alone does not say which
// commit produced it. Reconciliation walks the records in order, carries the
// most recent metadata forward and stamps it onto every numstat record,
// making each output row self-contained.
package reconcile

import (
	"io"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

// Reconcile flattens parsed history records into change records.
//
// The walk keeps a running current-commit snapshot. A metadata record
// replaces the snapshot and emits nothing by itself. A statistic record
// emits one ChangeRecord joining its file fields with the snapshot.
// Statistic records seen before any metadata, and records that parsed as
// neither shape, are dropped. Input order of statistic records is preserved.
func Reconcile(records []histlog.Record) []histlog.ChangeRecord {
	out := make([]histlog.ChangeRecord, 0, len(records))

	var current *histlog.CommitMeta

	for _, rec := range records {
		// Both checks run in order: a record carrying both shapes would
		// update the snapshot first and then emit against itself.
		if rec.Meta != nil {
			current = rec.Meta
		}

		if rec.Stat == nil || current == nil {
			continue
		}

		out = append(out, histlog.ChangeRecord{
			Additions: rec.Stat.Additions,
			Deletions: rec.Stat.Deletions,
			Binary:    rec.Stat.Binary,
			Path:      rec.Stat.Path,
			Hash:      current.Hash,
			Timestamp: current.Timestamp,
			Author:    current.Author,
			Message:   current.Message,
		})
	}

	return out
}

// Flatten parses a history export and reconciles it in one step. The
// returned stats describe the raw lines, not the reconciled output.
func Flatten(r io.Reader, opts *histlog.ParseOptions) ([]histlog.ChangeRecord, histlog.Stats, error) {
	records, stats, err := histlog.Parse(r, opts)
	if err != nil {
		return nil, stats, err
	}

	return Reconcile(records), stats, nil
}
