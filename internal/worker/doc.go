// Package worker runs the single-threaded state machine that owns one
// shard's embedded SQLite connection.
//
// # Overview
//
// Exactly one goroutine per shard ever touches that shard's
// internal/engine.Conn. Every other goroutine (the coordinator, and
// through it every caller) talks to a Worker only by sending Request
// values over its channel and reading the matching Response back.
//
// # State machine
//
//	┌──────┐  Begin   ┌───────┐  Prepare  ┌───────────┐
//	│ Idle │ ───────▶ │ InTx  │ ────────▶ │ Prepared  │
//	└──────┘          └───────┘           └───────────┘
//	   ▲  ▲  Prepare (no tx)                   │    ▲
//	   │  └──────────────────────────────────┐ │    │ Next (EOF)
//	   │ Commit/Rollback                     │ │    │
//	   │                                      ▼ ▼    │
//	   │                                 ┌──────────────┐
//	   └──── Close ────────────────────  │  Streaming   │
//	                                     └──────────────┘
//	                                      Query produces Streaming;
//	                                      Execute stays in Prepared;
//	                                      RowsEnd (explicit or on Next's
//	                                      EOF) returns to Prepared.
//
// RowsEnd and Close are deliberately distinct transitions: RowsEnd only
// ends the current result stream (Streaming -> Prepared) so the same
// prepared statement can be queried again, while Close tears the
// statement itself down, returning the worker to InTx when a transaction
// is open and to Idle otherwise. A Rows value always sends RowsEnd when it is
// closed, whether or not its caller consumed the stream to exhaustion,
// so a worker can never be left stranded in Streaming.
//
// A request that does not match a valid transition out of the worker's
// current state is logged and answered with a protocol-mismatch error;
// the worker keeps running rather than reverting state.
//
// Worker.supervise restarts the worker's goroutine after a fatal error (a
// panic, or an engine open failure) with a fixed backoff, exactly as
// coordinator.HealthMonitor in the prior iteration of this code
// retried failed nodes on a fixed interval — except here the unit of
// retry is a shard's own connection, not a remote peer.
package worker
