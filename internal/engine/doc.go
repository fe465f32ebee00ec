// Package engine adapts an embedded SQLite connection to the narrow
// contract internal/worker needs: open a file, prepare a statement once,
// bind-and-execute or bind-and-query it any number of times, and stream
// rows back one at a time.
//
// # Overview
//
// Each shard worker owns exactly one *Conn, opened against its own
// SQLite file, and never shares it across goroutines — so this package
// does no internal locking of its own, trusting the single-threaded
// worker loop that is its only caller.
//
// The driver is modernc.org/sqlite, a CGo-free pure-Go SQLite
// implementation, registered with database/sql under the "sqlite" name.
package engine
