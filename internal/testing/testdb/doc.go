// Package testdb manages per-test SurrealDB connections.
//
// New connects to a local SurrealDB instance, carves out a fresh namespace
// for the calling test, and applies the pipeline schema (campaign, job,
// alert and related tables with their unique indexes). Close drops the
// namespace again, so parallel tests never see each other's rows:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//	    // tdb.DB is ready to use
//	}
//
// Subtests that want to share one namespace use NewShared plus Reset, or
// SetupSubtest which wipes the pipeline tables between runs.
package testdb
