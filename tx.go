package shardcursor

import (
	"context"

	"github.com/dreamware/shardcursor/internal/worker"
)

// Tx is a transaction spanning every shard: Begin opens it on all
// shards at once, since a single logical write can route to any one of
// them depending on its bound sharding key, and the shard it lands on
// is not known until Stmt.Execute is called.
type Tx struct {
	h *Handle
}

// Begin opens a transaction on every shard.
func (h *Handle) Begin(_ context.Context) (*Tx, error) {
	for _, w := range h.workers {
		if resp := <-w.Do(worker.KindBegin, "", nil); resp.Err != nil {
			return nil, resp.Err
		}
	}
	return &Tx{h: h}, nil
}

// Prepare parses sqlText for use within the transaction. Statements
// prepared this way are routed and executed exactly like
// Handle.Prepare's; the only difference is that the shard workers they
// reach are already inside a transaction.
func (t *Tx) Prepare(ctx context.Context, sqlText string) (*Stmt, error) {
	return t.h.Prepare(ctx, sqlText)
}

// Commit commits the transaction on every shard.
func (t *Tx) Commit(_ context.Context) error {
	var firstErr error
	for _, w := range t.h.workers {
		if resp := <-w.Do(worker.KindCommit, "", nil); resp.Err != nil && firstErr == nil {
			firstErr = resp.Err
		}
	}
	return firstErr
}

// Rollback aborts the transaction on every shard.
func (t *Tx) Rollback(_ context.Context) error {
	var firstErr error
	for _, w := range t.h.workers {
		if resp := <-w.Do(worker.KindRollback, "", nil); resp.Err != nil && firstErr == nil {
			firstErr = resp.Err
		}
	}
	return firstErr
}
