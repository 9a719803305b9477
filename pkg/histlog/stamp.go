package histlog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrBadStamp is returned when a line does not match the commit stamp shape.
var ErrBadStamp = errors.New("malformed commit stamp")

// CommitStamp is the raw author stamp of a commit: unix seconds, numeric
// timezone offset and author name.
type CommitStamp struct {
	Timestamp int64
	Offset    string
	Author    string
}

// stampPattern captures all three stamp fields in a single pass. The fields
// mix separators (a space before the offset, a tab before the author), so a
// plain split on either delimiter cannot carve the line.
var stampPattern = regexp.MustCompile(`^(\d+) ([-+]\d+)\t(.+)$`)

// ParseStamp extracts the stamp fields from a line of the form
// "1446124800 -0800\tAlice Smith".
func ParseStamp(line string) (CommitStamp, error) {
	m := stampPattern.FindStringSubmatch(line)
	if m == nil {
		return CommitStamp{}, fmt.Errorf("%w: %q", ErrBadStamp, line)
	}

	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return CommitStamp{}, fmt.Errorf("%w: timestamp out of range: %q", ErrBadStamp, line)
	}

	return CommitStamp{Timestamp: ts, Offset: m[2], Author: m[3]}, nil
}
