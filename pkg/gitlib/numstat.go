package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// initialNumstatCapacity is the initial capacity for per-commit stat slices.
const initialNumstatCapacity = 16

// ChangeStats is the per-file outcome of one commit's diff, matching one
// line of git log --numstat output. Binary files carry zero counts and
// Binary set.
type ChangeStats struct {
	Additions int
	Deletions int
	Binary    bool
	Path      string
}

// Numstat computes per-file added and deleted line counts between two trees.
// A nil oldTree diffs against the empty tree, so every file counts as added;
// root commits use that form.
func (r *Repository) Numstat(oldTree, newTree *Tree) ([]ChangeStats, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	var oldT, newT *git2go.Tree

	if oldTree != nil {
		oldT = oldTree.tree
	}

	if newTree != nil {
		newT = newTree.tree
	}

	diff, err := r.repo.DiffTreeToTree(oldT, newT, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	defer func() { _ = diff.Free() }()

	stats := make([]ChangeStats, 0, initialNumstatCapacity)

	fileCallback := func(delta git2go.DiffDelta, _ float64) (git2go.DiffForEachHunkCallback, error) {
		path := delta.NewFile.Path
		if path == "" {
			path = delta.OldFile.Path
		}

		stats = append(stats, ChangeStats{
			Path:   path,
			Binary: delta.Flags&git2go.DiffFlagBinary != 0,
		})

		return func(_ git2go.DiffHunk) (git2go.DiffForEachLineCallback, error) {
			return func(line git2go.DiffLine) error {
				current := &stats[len(stats)-1]

				switch line.Origin {
				case git2go.DiffLineAddition:
					current.Additions++
				case git2go.DiffLineDeletion:
					current.Deletions++
				}

				return nil
			}, nil
		}, nil
	}

	err = diff.ForEach(fileCallback, git2go.DiffDetailLines)
	if err != nil {
		return nil, fmt.Errorf("walk diff: %w", err)
	}

	return stats, nil
}

// CommitNumstat computes the commit's numstat against its first parent.
// Merge commits diff against the first parent only, the shape git log
// --numstat prints on a first-parent simplified history.
func (r *Repository) CommitNumstat(c *Commit) ([]ChangeStats, error) {
	newTree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	defer newTree.Free()

	var oldTree *Tree

	if c.NumParents() > 0 {
		parent, parentErr := c.Parent(0)
		if parentErr != nil {
			return nil, parentErr
		}
		defer parent.Free()

		oldTree, parentErr = parent.Tree()
		if parentErr != nil {
			return nil, parentErr
		}
		defer oldTree.Free()
	}

	return r.Numstat(oldTree, newTree)
}
