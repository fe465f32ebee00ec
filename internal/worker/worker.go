package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/shardcursor/internal/engine"
	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Kind identifies the operation a Request asks the worker to perform.
type Kind int

const (
	KindBegin Kind = iota
	KindPrepare
	KindExecute
	KindQuery
	KindNext
	// KindRowsEnd ends a result stream (Streaming -> Prepared) without
	// closing the statement itself, mirroring the worker protocol's
	// RowsEnd/StatementEnd distinction: a Stmt can be queried again after
	// its Rows is closed, but KindClose tears the statement down for good.
	KindRowsEnd
	KindCommit
	KindRollback
	KindClose
)

// Request is one message sent to a Worker's channel. Reply must be a
// buffered (capacity >= 1) channel so Execute can be fired without the
// caller waiting for the worker to drain it — Stmt.Close collects the
// replies later by count, not by blocking send.
type Request struct {
	Kind   Kind
	SQL    string
	Params []sqltypes.SqlParam
	Reply  chan Response
}

// Response is the worker's answer to one Request.
type Response struct {
	Err             error
	LastInsertRowID int64
	Row             []sqltypes.SqlValue
	EOF             bool
	ColumnNames     []string // populated on the response to a KindQuery request
}

type state int

const (
	stateIdle state = iota
	stateInTx
	statePrepared
	stateStreaming
)

// Worker owns one shard's engine.Conn and processes Requests against it
// one at a time on its own goroutine.
type Worker struct {
	ShardIndex int

	dbPath string
	logger *zap.Logger
	backoff time.Duration

	reqCh    chan Request
	shutdown chan struct{}

	conn  *engine.Conn
	state state
	tx    *engine.Tx
	stmt  *engine.Stmt
	rows  *engine.Rows
}

// Spawn starts a supervised worker goroutine for the shard at dbPath
// and returns immediately; the worker runs until Close is called.
func Spawn(shardIndex int, dbPath string, logger *zap.Logger, backoff time.Duration) *Worker {
	w := &Worker{
		ShardIndex: shardIndex,
		dbPath:     dbPath,
		logger:     logger,
		backoff:    backoff,
		reqCh:      make(chan Request, 64),
		shutdown:   make(chan struct{}),
	}
	go w.supervise()
	return w
}

// Do enqueues a request and returns its reply channel without blocking
// on the worker's processing of it.
func (w *Worker) Do(kind Kind, sqlText string, params []sqltypes.SqlParam) chan Response {
	reply := make(chan Response, 1)
	w.reqCh <- Request{Kind: kind, SQL: sqlText, Params: params, Reply: reply}
	return reply
}

// Close stops the worker's goroutine. Outstanding requests already
// enqueued are drained before the goroutine exits.
func (w *Worker) Close() {
	close(w.shutdown)
}

func (w *Worker) supervise() {
	for {
		err := w.runOnce()
		if err == nil {
			return
		}
		w.logger.Error("shard worker restarting after fatal error",
			zap.Int("shard", w.ShardIndex), zap.Error(err), zap.Duration("backoff", w.backoff))
		select {
		case <-time.After(w.backoff):
		case <-w.shutdown:
			return
		}
	}
}

func (w *Worker) runOnce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shard worker panic: %v", r)
		}
	}()

	conn, openErr := engine.Open(w.dbPath)
	if openErr != nil {
		return openErr
	}
	w.conn = conn
	w.state = stateIdle
	w.tx, w.stmt, w.rows = nil, nil, nil
	defer conn.Close()

	for {
		select {
		case req := <-w.reqCh:
			w.handle(req)
		case <-w.shutdown:
			for drained := false; !drained; {
				select {
				case req := <-w.reqCh:
					w.handle(req)
				default:
					drained = true
				}
			}
			w.cleanup()
			return nil
		}
	}
}

func (w *Worker) cleanup() {
	if w.rows != nil {
		w.rows.Close()
	}
	if w.stmt != nil {
		w.stmt.Close()
	}
	if w.tx != nil {
		w.tx.Rollback()
	}
}

func (w *Worker) handle(req Request) {
	ctx := context.Background()
	switch req.Kind {
	case KindBegin:
		if w.state != stateIdle {
			w.protocolMismatch(req)
			return
		}
		tx, err := w.conn.Begin(ctx)
		if err != nil {
			w.reply(req, Response{Err: err})
			return
		}
		w.tx = tx
		w.state = stateInTx
		w.reply(req, Response{})

	case KindPrepare:
		if w.state != stateIdle && w.state != stateInTx {
			w.protocolMismatch(req)
			return
		}
		var stmt *engine.Stmt
		var err error
		if w.tx != nil {
			stmt, err = w.tx.Prepare(ctx, req.SQL)
		} else {
			stmt, err = w.conn.Prepare(ctx, req.SQL)
		}
		if err != nil {
			w.reply(req, Response{Err: err})
			return
		}
		w.stmt = stmt
		w.state = statePrepared
		w.reply(req, Response{})

	case KindExecute:
		if w.state != statePrepared {
			w.protocolMismatch(req)
			return
		}
		id, err := w.stmt.BindExec(ctx, req.Params)
		w.reply(req, Response{LastInsertRowID: id, Err: err})

	case KindQuery:
		if w.state != statePrepared {
			w.protocolMismatch(req)
			return
		}
		rows, err := w.stmt.BindQuery(ctx, req.Params)
		if err != nil {
			w.reply(req, Response{Err: err})
			return
		}
		w.rows = rows
		w.state = stateStreaming
		w.reply(req, Response{ColumnNames: rows.ColumnNames()})

	case KindNext:
		if w.state != stateStreaming {
			w.protocolMismatch(req)
			return
		}
		vals, ok, err := w.rows.Next(ctx)
		if err != nil {
			w.reply(req, Response{Err: err})
			return
		}
		if !ok {
			w.rows.Close()
			w.rows = nil
			w.state = statePrepared
			w.reply(req, Response{EOF: true})
			return
		}
		w.reply(req, Response{Row: vals})

	case KindRowsEnd:
		if w.state == statePrepared {
			// The stream already ended naturally via KindNext's EOF
			// transition; RowsEnd is still sent unconditionally by
			// Rows.Close, so treat this as a no-op rather than a
			// mismatch.
			w.reply(req, Response{})
			return
		}
		if w.state != stateStreaming {
			w.protocolMismatch(req)
			return
		}
		if w.rows != nil {
			w.rows.Close()
			w.rows = nil
		}
		w.state = statePrepared
		w.reply(req, Response{})

	case KindCommit:
		if w.state != stateInTx && w.state != statePrepared {
			w.protocolMismatch(req)
			return
		}
		if w.stmt != nil {
			w.stmt.Close()
			w.stmt = nil
		}
		var err error
		if w.tx != nil {
			err = w.tx.Commit()
			w.tx = nil
		}
		w.state = stateIdle
		w.reply(req, Response{Err: err})

	case KindRollback:
		if w.state != stateInTx && w.state != statePrepared {
			w.protocolMismatch(req)
			return
		}
		if w.stmt != nil {
			w.stmt.Close()
			w.stmt = nil
		}
		var err error
		if w.tx != nil {
			err = w.tx.Rollback()
			w.tx = nil
		}
		w.state = stateIdle
		w.reply(req, Response{Err: err})

	case KindClose:
		if w.rows != nil {
			w.rows.Close()
			w.rows = nil
		}
		if w.stmt != nil {
			w.stmt.Close()
			w.stmt = nil
		}
		if w.tx != nil {
			w.state = stateInTx
		} else {
			w.state = stateIdle
		}
		w.reply(req, Response{})

	default:
		w.protocolMismatch(req)
	}
}

func (w *Worker) protocolMismatch(req Request) {
	w.logger.Warn("shard worker dropped request invalid for its current state",
		zap.Int("shard", w.ShardIndex), zap.Int("state", int(w.state)), zap.Int("kind", int(req.Kind)))
	w.reply(req, Response{Err: sqlerr.Wrap(sqlerr.ErrProtocolMismatch, "request not valid for worker's current state")})
}

func (w *Worker) reply(req Request, resp Response) {
	if req.Reply != nil {
		req.Reply <- resp
	}
}
