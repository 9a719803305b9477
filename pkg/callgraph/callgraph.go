// Package callgraph detects recursive method-call chains in an external
// Neo4j code graph.
//
// The graph model is the conventional code-graph shape: Method nodes joined
// by CALLS edges, Class nodes joined to their methods by DECLARES edges. A
// single read-only query finds methods that sit on a CALLS cycle through
// themselves and that also call a method declared by a designated database
// class.
package callgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	// DefaultDatabaseClass is the class whose methods count as database calls.
	DefaultDatabaseClass = "Database"

	// DefaultTimeout bounds a single query round-trip.
	DefaultTimeout = 30 * time.Second
)

// ErrMissingURI is returned when no graph endpoint is configured.
var ErrMissingURI = errors.New("neo4j uri is required")

// recursiveCallQuery is the fixed detection query. It is parameterised only
// by the database class name; everything else is part of the pattern.
const recursiveCallQuery = `
MATCH (m:Method)-[:CALLS*]->(m)
MATCH (m)-[:CALLS]->(dbm:Method)<-[:DECLARES]-(db:Class {name: $databaseClass})
RETURN DISTINCT m.name AS caller, db.name + '.' + dbm.name AS dbMethod
ORDER BY caller, dbMethod`

// RecursiveCall is one detected method: it calls itself directly or
// transitively and also calls the named database method.
type RecursiveCall struct {
	Caller   string `json:"caller"    yaml:"caller"`
	DBMethod string `json:"db_method" yaml:"db_method"`
}

// Options holds the graph connection and query settings.
type Options struct {
	// URI is the bolt or neo4j endpoint, e.g. neo4j://localhost:7687.
	URI string

	Username string
	Password string

	// Database selects the Neo4j database; empty uses the server default.
	Database string

	// DatabaseClass overrides DefaultDatabaseClass.
	DatabaseClass string

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration
}

// Client runs the recursive-call query over a Neo4j driver.
type Client struct {
	driver        neo4j.DriverWithContext
	database      string
	databaseClass string
	timeout       time.Duration
}

// NewClient builds a client from the options. The driver dials lazily; an
// unreachable server surfaces on the first query, not here.
func NewClient(opts Options) (*Client, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.Username, opts.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	databaseClass := opts.DatabaseClass
	if databaseClass == "" {
		databaseClass = DefaultDatabaseClass
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		driver:        driver,
		database:      opts.Database,
		databaseClass: databaseClass,
		timeout:       timeout,
	}, nil
}

// Close releases the underlying driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	err := c.driver.Close(ctx)
	if err != nil {
		return fmt.Errorf("close neo4j driver: %w", err)
	}

	return nil
}

// FindRecursiveCalls executes the detection query once and maps its rows.
// Failures to reach the graph surface as a single terminal error.
func (c *Client) FindRecursiveCalls(ctx context.Context) ([]RecursiveCall, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer func() { _ = session.Close(ctx) }()

	result, err := session.Run(ctx, recursiveCallQuery, map[string]any{"databaseClass": c.databaseClass})
	if err != nil {
		return nil, fmt.Errorf("run recursive-call query: %w", err)
	}

	calls := make([]RecursiveCall, 0)

	for result.Next(ctx) {
		call, err := mapRecursiveCall(result.Record())
		if err != nil {
			return nil, err
		}

		calls = append(calls, call)
	}

	err = result.Err()
	if err != nil {
		return nil, fmt.Errorf("stream recursive-call rows: %w", err)
	}

	return calls, nil
}
