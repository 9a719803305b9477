// Package export produces the history log text the reconciler consumes: an
// interleaved stream of commit metadata lines and per-file numstat lines.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/gitledger/pkg/gitlib"
)

// GitCommand is the git invocation that produces the same stream; recorded
// for callers that export history on machines without libgit2 bindings.
const GitCommand = `git log --numstat --pretty=format:'%x09%x09%x09%H%x09%at%x09%aN%x09%s'`

// binaryCount is written in place of line counts for binary files,
// matching git's numstat output.
const binaryCount = "-"

// Options configures a history export.
type Options struct {
	Since       string // Cutoff accepted by gitlib.ParseTime; empty exports everything.
	FirstParent bool   // Follow only the first parent of merges.
	Limit       int    // Keep at most this many commits, newest first. Zero keeps all.
}

// CommitChanges is one commit's slice of the export: its metadata plus the
// numstat of every file it touched.
type CommitChanges struct {
	Hash      string
	Timestamp int64
	Author    string
	Subject   string
	Stats     []gitlib.ChangeStats
}

// Exporter writes repository history in the reconciler's input format.
type Exporter struct {
	opts Options
}

// New creates an exporter with the given options.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export walks the repository history oldest first and writes the log to w.
func (e *Exporter) Export(ctx context.Context, repo *gitlib.Repository, w io.Writer) error {
	commits, err := e.Collect(ctx, repo)
	if err != nil {
		return err
	}

	return WriteLog(commits, w)
}

// Collect gathers per-commit changes oldest first.
func (e *Exporter) Collect(ctx context.Context, repo *gitlib.Repository) ([]CommitChanges, error) {
	commits, err := gitlib.LoadCommits(repo, gitlib.CommitLoadOptions{
		Limit:       e.opts.Limit,
		FirstParent: e.opts.FirstParent,
		Since:       e.opts.Since,
	})
	if err != nil {
		return nil, fmt.Errorf("load commits: %w", err)
	}

	defer func() {
		for _, commit := range commits {
			commit.Free()
		}
	}()

	out := make([]CommitChanges, 0, len(commits))

	for _, commit := range commits {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("collect history: %w", ctxErr)
		}

		stats, statErr := repo.CommitNumstat(commit)
		if statErr != nil {
			return nil, fmt.Errorf("numstat %s: %w", commit.Hash(), statErr)
		}

		out = append(out, CommitChanges{
			Hash:      commit.Hash().String(),
			Timestamp: commit.Author().When.Unix(),
			Author:    commit.Author().Name,
			Subject:   commit.Summary(),
			Stats:     stats,
		})
	}

	return out, nil
}

// fieldSanitizer keeps exported text fields free of the separators the
// parser splits on.
var fieldSanitizer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// WriteLog writes commit changes in the interleaved text format: one
// metadata line per commit followed by one numstat line per changed file.
func WriteLog(commits []CommitChanges, w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, commit := range commits {
		_, err := fmt.Fprintf(bw, "\t\t\t%s\t%d\t%s\t%s\n",
			commit.Hash,
			commit.Timestamp,
			fieldSanitizer.Replace(commit.Author),
			fieldSanitizer.Replace(commit.Subject),
		)
		if err != nil {
			return fmt.Errorf("write metadata line: %w", err)
		}

		for _, stat := range commit.Stats {
			_, err = fmt.Fprintf(bw, "%s\t%s\t%s\n",
				numstatCount(stat.Additions, stat.Binary),
				numstatCount(stat.Deletions, stat.Binary),
				stat.Path,
			)
			if err != nil {
				return fmt.Errorf("write numstat line: %w", err)
			}
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("flush export: %w", err)
	}

	return nil
}

func numstatCount(n int, binary bool) string {
	if binary {
		return binaryCount
	}

	return strconv.Itoa(n)
}
