package histlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Line shape constants.
const (
	// metaFieldCount is the column count of a metadata line: three empty
	// leading columns, then hash, timestamp, author and message. Splitting
	// is capped here so the message column absorbs any tabs it contains.
	metaFieldCount = 7

	// statFieldCount is the column count of a numstat line.
	statFieldCount = 3

	// binaryCount is what git prints in place of a line count for binary files.
	binaryCount = "-"
)

// DefaultMaxLineSize bounds a single input line. Commit subjects are short;
// 1 MiB leaves headroom for pathological generated-file paths.
const DefaultMaxLineSize = 1 << 20

// initialScanBufSize is the scanner's starting buffer size.
const initialScanBufSize = 64 * 1024

// ParseOptions configures Parse.
type ParseOptions struct {
	MaxLineSize int // Scanner line limit in bytes. Zero means DefaultMaxLineSize.
}

// Stats counts the line shapes seen by Parse.
type Stats struct {
	Meta      int `json:"meta"      yaml:"meta"`
	Stat      int `json:"stat"      yaml:"stat"`
	Malformed int `json:"malformed" yaml:"malformed"`
}

// Lines returns the total number of lines seen.
func (s Stats) Lines() int {
	return s.Meta + s.Stat + s.Malformed
}

// ParseLine classifies a single line of the export by its shape. Lines that
// match neither shape come back with both Meta and Stat nil.
func ParseLine(line string) Record {
	fields := strings.SplitN(line, "\t", metaFieldCount)

	switch len(fields) {
	case metaFieldCount:
		return parseMeta(fields)
	case statFieldCount:
		return parseStat(fields)
	default:
		return Record{}
	}
}

// parseMeta validates the metadata shape: three empty leading columns and an
// integer timestamp.
func parseMeta(fields []string) Record {
	if fields[0] != "" || fields[1] != "" || fields[2] != "" {
		return Record{}
	}

	ts, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Record{}
	}

	return Record{Meta: &CommitMeta{
		Hash:      fields[3],
		Timestamp: ts,
		Author:    fields[5],
		Message:   fields[6],
	}}
}

// parseStat validates the numstat shape: two counts and a non-empty path.
func parseStat(fields []string) Record {
	additions, addBinary, ok := parseCount(fields[0])
	if !ok {
		return Record{}
	}

	deletions, delBinary, ok := parseCount(fields[1])
	if !ok {
		return Record{}
	}

	if fields[2] == "" {
		return Record{}
	}

	return Record{Stat: &FileStat{
		Additions: additions,
		Deletions: deletions,
		Binary:    addBinary || delBinary,
		Path:      fields[2],
	}}
}

// parseCount parses one numstat count. Git prints "-" for binary files and
// never emits negative counts.
func parseCount(s string) (n int, binary, ok bool) {
	if s == binaryCount {
		return 0, true, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false, false
	}

	return n, false, true
}

// Parse reads an export line by line, classifying each into a Record. Read
// failures surface as errors; malformed lines only increment Stats.Malformed.
func Parse(r io.Reader, opts *ParseOptions) ([]Record, Stats, error) {
	maxLineSize := DefaultMaxLineSize
	if opts != nil && opts.MaxLineSize > 0 {
		maxLineSize = opts.MaxLineSize
	}

	scanner := bufio.NewScanner(r)
	// The scanner caps tokens at the larger of max and the initial buffer
	// capacity, so the initial buffer must not exceed the limit.
	scanner.Buffer(make([]byte, 0, min(initialScanBufSize, maxLineSize)), maxLineSize)

	var (
		records []Record
		stats   Stats
	)

	for scanner.Scan() {
		rec := ParseLine(scanner.Text())

		switch {
		case rec.Meta != nil:
			stats.Meta++
		case rec.Stat != nil:
			stats.Stat++
		default:
			stats.Malformed++
		}

		records = append(records, rec)
	}

	err := scanner.Err()
	if err != nil {
		return nil, stats, fmt.Errorf("scan history log: %w", err)
	}

	return records, stats, nil
}
