package shardcursor

import (
	"context"

	"github.com/dreamware/shardcursor/internal/merge"
	"github.com/dreamware/shardcursor/internal/sqltypes"
	"github.com/dreamware/shardcursor/internal/worker"
)

// Rows streams the merged result of a Stmt.Query call, one Row at a
// time, in final (post-ORDER BY, post-LIMIT/OFFSET) order.
type Rows struct {
	columnNames []string

	merger  *merge.Merger
	workers []*worker.Worker // every shard Query targeted, for RowsEnd on Close

	aggregateValue *int64
	aggregateDone  bool

	closed bool
}

func newMergedRows(m *merge.Merger, columnNames []string, workers []*worker.Worker) *Rows {
	return &Rows{merger: m, columnNames: columnNames, workers: workers}
}

func newCountRows(total int64, columnNames []string, workers []*worker.Worker) *Rows {
	if len(columnNames) == 0 {
		columnNames = []string{"count(*)"}
	}
	return &Rows{aggregateValue: &total, columnNames: columnNames, workers: workers}
}

// Next advances to the next row. ok is false once the stream is
// exhausted.
func (r *Rows) Next(ctx context.Context) (*Row, bool, error) {
	if r.aggregateValue != nil {
		if r.aggregateDone {
			return nil, false, nil
		}
		r.aggregateDone = true
		if *r.aggregateValue == 0 {
			// A zero total ends the stream without emitting a row.
			return nil, false, nil
		}
		return &Row{
			values:      []sqltypes.SqlValue{{Kind: sqltypes.ValueInteger, Integer: *r.aggregateValue}},
			columnNames: r.columnNames,
		}, true, nil
	}

	vals, ok, err := r.merger.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &Row{values: vals, columnNames: r.columnNames}, true, nil
}

// Close broadcasts RowsEnd to every shard Query targeted, regardless of
// whether the caller consumed the result set to completion — a LIMIT
// that was already satisfied, or a caller that simply stops iterating
// early, must not strand a shard worker in its Streaming state forever.
func (r *Rows) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for _, w := range r.workers {
		if resp := <-w.Do(worker.KindRowsEnd, "", nil); resp.Err != nil && firstErr == nil {
			firstErr = resp.Err
		}
	}
	return firstErr
}

// ColumnNames reports the result set's column names, in order.
func (r *Rows) ColumnNames() []string { return r.columnNames }
