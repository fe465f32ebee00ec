// Package sqltypes defines the two tagged-value types that cross every
// boundary in shardcursor: SqlParam on the way in, SqlValue on the way
// out.
//
// # Overview
//
// Every other package in this module passes values across goroutine
// boundaries (coordinator → worker, worker → merge) as one of these two
// types rather than as bare Go interfaces, so that the worker protocol in
// internal/worker has a closed, exhaustively-switchable value domain to
// reason about.
//
// # Architecture
//
//	┌───────────────────────────┐        ┌───────────────────────────┐
//	│         SqlParam          │        │         SqlValue          │
//	├───────────────────────────┤        ├───────────────────────────┤
//	│ I64(int64)                │        │ Null                      │
//	│ U32(uint32)                │  exec  │ Integer(int64)            │
//	│ U16(uint16)                │ ─────▶ │ Real(float64)             │
//	│ Text(string)               │        │ Text([]byte)              │
//	└───────────────────────────┘        │ Blob([]byte)              │
//	                                      └───────────────────────────┘
//
// SqlParam additionally implements database/sql/driver.Valuer, so values
// built with I64/U32/U16/Text can be passed straight into
// database/sql.Stmt.Exec/Query without a conversion step at the call
// site.
package sqltypes
