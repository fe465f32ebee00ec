// Package shardcursor is a client-side horizontal sharding layer over
// embedded SQLite: one caller-configured number of shards, one SQLite
// file per shard, one goroutine per shard running the state machine in
// internal/worker, and a Handle that routes, fans out, executes, and
// merges across them.
//
// # Overview
//
// A caller never sees a shard directly. Handle.Prepare parses a
// statement once (internal/sqlparse), and every subsequent
// Stmt.Execute/Query call re-routes per call (internal/router) since an
// INSERT's sharding key usually arrives as a bound parameter rather than
// being known at prepare time. SELECTs always fan out to every shard;
// their per-shard streams come back through internal/merge, which
// re-applies the statement's global ORDER BY/LIMIT/OFFSET over rows each
// shard already executed with those clauses stripped.
//
// # Architecture
//
//	┌────────┐  Prepare/Execute/Query  ┌────────────┐
//	│ caller │ ──────────────────────▶ │   Handle   │
//	└────────┘                         └─────┬──────┘
//	                                          │ route (internal/router)
//	                    ┌─────────────────────┼─────────────────────┐
//	                    ▼                     ▼                     ▼
//	              worker.Worker          worker.Worker          worker.Worker
//	              (shard 0)              (shard 1)              (shard N)
//	                    │                     │                     │
//	              engine.Conn            engine.Conn            engine.Conn
//	              (SQLite file)          (SQLite file)          (SQLite file)
//	                    └─────────────────────┴─────────────────────┘
//	                                          │
//	                                    internal/merge
//	                                    (k-way merge, LIMIT/OFFSET, COUNT(*))
//
// Errors are reported through internal/sqlerr's sentinel Kinds; callers
// that need to distinguish, say, a routing failure from an engine error
// should compare with sqlerr.KindOf rather than string-matching.
package shardcursor
