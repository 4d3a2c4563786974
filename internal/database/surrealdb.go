package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB is the Database implementation backed by a SurrealDB websocket
// connection. All pipeline tables live in one namespace/database pair.
type SurrealDB struct {
	conn *surrealdb.DB
	cfg  Config
}

// NewSurrealDB returns an unconnected client for cfg
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{cfg: cfg}
}

// Connect dials the endpoint, signs in, and selects the configured
// namespace and database
func (s *SurrealDB) Connect(ctx context.Context) error {
	conn, err := surrealdb.FromEndpointURLString(ctx, fmt.Sprintf("ws://%s:%s", s.cfg.Host, s.cfg.Port))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if _, err := conn.SignIn(ctx, &surrealdb.Auth{Username: s.cfg.User, Password: s.cfg.Password}); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}
	if err := conn.Use(ctx, s.cfg.Namespace, s.cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.conn = conn
	return nil
}

// Close tears down the connection
func (s *SurrealDB) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(context.Background())
}

// Ping verifies the connection is alive
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.conn == nil {
		return ErrConnection
	}
	if _, err := s.conn.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query runs a SurrealQL statement batch. Each returned element is a frame
// of the form {"status": ..., "result": ...}, one per statement; any
// non-OK statement fails the whole call.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.conn == nil {
		return nil, ErrConnection
	}

	raw, err := surrealdb.Query[interface{}](ctx, s.conn, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if raw == nil {
		return nil, nil
	}

	frames := make([]interface{}, 0, len(*raw))
	for _, stmt := range *raw {
		if stmt.Status != "OK" {
			if stmt.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, stmt.Error.Message)
			}
			return nil, ErrQuery
		}
		frames = append(frames, map[string]interface{}{
			"status": stmt.Status,
			"result": stmt.Result,
		})
	}
	return frames, nil
}

// QueryOne runs a single-statement query and returns its first row, or
// ErrNotFound when the statement matched nothing
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	frames, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrNotFound
	}

	frame, ok := frames[0].(map[string]interface{})
	if !ok {
		return frames[0], nil
	}
	switch rows := frame["result"].(type) {
	case []interface{}:
		if len(rows) == 0 {
			return nil, ErrNotFound
		}
		return rows[0], nil
	default:
		// Scalar statements (count, info) yield a bare value
		return rows, nil
	}
}

// Execute runs a statement batch and discards the rows
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}
