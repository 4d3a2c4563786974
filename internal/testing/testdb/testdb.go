package testdb

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
)

// pipelineTables lists every table the monitoring pipeline writes to
var pipelineTables = []string{
	"campaign", "tracked_post", "engagement",
	"job", "alert", "metric_snapshot", "auth_state",
}

// schema declares the pipeline tables. Tables stay schemaless; the two
// unique indexes back the one-snapshot-per-hour and one-shot-state-token
// guarantees.
const schema = `
DEFINE TABLE campaign SCHEMALESS;
DEFINE TABLE tracked_post SCHEMALESS;
DEFINE TABLE engagement SCHEMALESS;
DEFINE TABLE job SCHEMALESS;
DEFINE TABLE alert SCHEMALESS;
DEFINE TABLE metric_snapshot SCHEMALESS;
DEFINE INDEX snapshot_hour ON TABLE metric_snapshot COLUMNS campaign_id, hour_bucket UNIQUE;
DEFINE TABLE auth_state SCHEMALESS;
DEFINE INDEX state_token ON TABLE auth_state COLUMNS token UNIQUE;
`

// TestDB is a connected store scoped to a namespace no other test uses
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var namespaceSeq atomic.Int64

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func testConfig() database.Config {
	return database.Config{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
	}
}

// New connects to the test store under a fresh namespace and applies the
// pipeline schema. Callers own cleanup via Close.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.Namespace = fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), namespaceSeq.Add(1))
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: connect failed (is a SurrealDB instance running?): %v", err)
	}
	if err := db.Execute(ctx, schema, nil); err != nil {
		db.Close()
		t.Fatalf("testdb: schema setup failed: %v", err)
	}

	return &TestDB{DB: db, Namespace: cfg.Namespace, Database: cfg.Database, t: t}
}

// Close drops the namespace and disconnects. Cleanup errors are ignored;
// stray namespaces on a throwaway test instance are harmless.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	tdb.DB.Close()
}

// Reset empties every pipeline table, keeping the schema. Cheaper than a
// fresh TestDB when subtests just need clean data.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range pipelineTables {
		if err := tdb.DB.Execute(ctx, "DELETE FROM "+table, nil); err != nil {
			t.Logf("testdb: could not clear %s: %v", table, err)
		}
	}
}

// Ctx returns a context bounded to the per-operation test timeout. The
// cancel is deliberately dropped; operations finish well inside it.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return ctx
}

// MustExec runs a statement and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nquery: %s", err, query)
	}
}

// MustQuery runs a query and fails the test on error
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nquery: %s", err, query)
	}
	return results
}

// Shared wraps one TestDB for reuse across subtests that each want clean data
type Shared struct {
	*TestDB
}

// NewShared connects once for a whole subtest group
func NewShared(t *testing.T) *Shared {
	return &Shared{TestDB: New(t)}
}

// SetupSubtest empties the tables and rebinds failure reporting to the
// subtest. Call it first inside each t.Run block.
func (s *Shared) SetupSubtest(t *testing.T) *TestDB {
	t.Helper()
	s.TestDB.t = t
	s.TestDB.Reset(t)
	return s.TestDB
}
