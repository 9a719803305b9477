// Package histlog parses the tab-delimited commit history export produced by
// git log --numstat with a tab-prefixed pretty format.
//
// The export interleaves two line shapes. A commit metadata line carries three
// empty leading columns followed by the commit hash, the author timestamp in
// unix seconds, the author name and the subject:
//
//	\t\t\t4f190ec8...\t1446124800\tAlice\tFix the frobnicator
//
// A numstat line carries added lines, deleted lines and the file path, with
// "-" in place of the counts for binary files:
//
//	12\t3\tpkg/frob/frob.go
//
// A metadata line applies to every numstat line that follows it, up to the
// next metadata line.
package histlog

// CommitMeta identifies a commit: hash, author timestamp in unix seconds,
// author name and the subject line of the message.
type CommitMeta struct {
	Hash      string
	Timestamp int64
	Author    string
	Message   string
}

// FileStat is a single numstat entry. Binary files carry no line counts;
// Binary is set and both counts are zero.
type FileStat struct {
	Additions int
	Deletions int
	Binary    bool
	Path      string
}

// Record is one parsed line of the export. A well-formed line sets exactly
// one of Meta and Stat; a malformed line sets neither.
type Record struct {
	Meta *CommitMeta
	Stat *FileStat
}

// ChangeRecord is a fully reconciled per-file change: the numstat fields of
// one file joined with the metadata of the commit that changed it.
type ChangeRecord struct {
	Additions int    `json:"additions"        yaml:"additions"`
	Deletions int    `json:"deletions"        yaml:"deletions"`
	Binary    bool   `json:"binary,omitempty" yaml:"binary,omitempty"`
	Path      string `json:"filename"         yaml:"filename"`
	Hash      string `json:"commit_id"        yaml:"commit_id"`
	Timestamp int64  `json:"timestamp"        yaml:"timestamp"`
	Author    string `json:"author"           yaml:"author"`
	Message   string `json:"message"          yaml:"message"`
}
