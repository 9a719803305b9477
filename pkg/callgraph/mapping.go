package callgraph

import (
	"errors"
	"fmt"
)

// ErrBadRow is returned when a result row is missing an expected column or
// carries a non-string value in one.
var ErrBadRow = errors.New("malformed result row")

// row is the slice of a Neo4j result record the mapper reads. The driver's
// db.Record satisfies it.
type row interface {
	Get(key string) (any, bool)
}

func mapRecursiveCall(rec row) (RecursiveCall, error) {
	caller, err := stringColumn(rec, "caller")
	if err != nil {
		return RecursiveCall{}, err
	}

	dbMethod, err := stringColumn(rec, "dbMethod")
	if err != nil {
		return RecursiveCall{}, err
	}

	return RecursiveCall{Caller: caller, DBMethod: dbMethod}, nil
}

func stringColumn(rec row, key string) (string, error) {
	val, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: missing column %q", ErrBadRow, key)
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: column %q holds %T, want string", ErrBadRow, key, val)
	}

	return s, nil
}
