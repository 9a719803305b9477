package callgraph //nolint:testpackage // exercises the unexported row mapping.

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingURI(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingURI)
}

func TestNewClient_BadScheme(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Options{URI: "http://localhost:7687"})
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Options{URI: "neo4j://localhost:7687"})
	require.NoError(t, err)

	defer func() { _ = c.Close(context.Background()) }()

	assert.Equal(t, DefaultDatabaseClass, c.databaseClass)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Empty(t, c.database)
}

func TestNewClient_Overrides(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Options{
		URI:           "bolt://graph:7687",
		Database:      "code",
		DatabaseClass: "Repository",
		Timeout:       DefaultTimeout * 2,
	})
	require.NoError(t, err)

	defer func() { _ = c.Close(context.Background()) }()

	assert.Equal(t, "Repository", c.databaseClass)
	assert.Equal(t, DefaultTimeout*2, c.timeout)
	assert.Equal(t, "code", c.database)
}

func TestMapRecursiveCall(t *testing.T) {
	t.Parallel()

	rec := &db.Record{
		Keys:   []string{"caller", "dbMethod"},
		Values: []any{"Session.flush", "Database.execute"},
	}

	call, err := mapRecursiveCall(rec)
	require.NoError(t, err)
	assert.Equal(t, RecursiveCall{Caller: "Session.flush", DBMethod: "Database.execute"}, call)
}

func TestMapRecursiveCall_MissingColumn(t *testing.T) {
	t.Parallel()

	rec := &db.Record{
		Keys:   []string{"caller"},
		Values: []any{"Session.flush"},
	}

	_, err := mapRecursiveCall(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRow)
	assert.Contains(t, err.Error(), "dbMethod")
}

func TestMapRecursiveCall_WrongType(t *testing.T) {
	t.Parallel()

	rec := &db.Record{
		Keys:   []string{"caller", "dbMethod"},
		Values: []any{"Session.flush", int64(7)},
	}

	_, err := mapRecursiveCall(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRow)
	assert.Contains(t, err.Error(), "int64")
}

func TestQueryBindsDatabaseClass(t *testing.T) {
	t.Parallel()

	assert.Contains(t, recursiveCallQuery, "$databaseClass")
	assert.Contains(t, recursiveCallQuery, "[:CALLS*]")
}
