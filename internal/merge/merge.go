package merge

import (
	"container/heap"
	"context"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqlparse"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Source is one shard's row stream, as seen by the merge stage. The
// worker-backed implementation lives in the root shardcursor package;
// tests in this package use a plain in-memory fake.
type Source interface {
	Next(ctx context.Context) ([]sqltypes.SqlValue, bool, error)
}

// Merger performs the k-way merge of a set of shard Sources according to
// a QueryPlan, lazily pulling one row at a time.
type Merger struct {
	sources []Source
	plan    *sqlparse.QueryPlan

	started bool
	h       *itemHeap
	next    int

	skipped uint64
	emitted uint64
}

// New constructs a Merger over sources, one per routed shard, driven by
// plan.
func New(sources []Source, plan *sqlparse.QueryPlan) *Merger {
	return &Merger{sources: sources, plan: plan}
}

// Next returns the next row in merged, globally-ordered, limit/offset-
// applied order. ok is false once the merged stream (after LIMIT) is
// exhausted.
func (m *Merger) Next(ctx context.Context) (row []sqltypes.SqlValue, ok bool, err error) {
	if !m.started {
		if err := m.init(ctx); err != nil {
			return nil, false, err
		}
		m.started = true
	}

	for {
		if m.plan.Limit != nil && m.emitted >= *m.plan.Limit {
			return nil, false, nil
		}

		var r []sqltypes.SqlValue
		var present bool
		var pullErr error
		if m.plan.OrderBy != nil {
			r, present, pullErr = m.nextOrdered(ctx)
		} else {
			r, present, pullErr = m.nextUnordered(ctx)
		}
		if pullErr != nil {
			return nil, false, pullErr
		}
		if !present {
			return nil, false, nil
		}

		if m.plan.Offset != nil && m.skipped < *m.plan.Offset {
			m.skipped++
			continue
		}
		m.emitted++
		return r, true, nil
	}
}

func (m *Merger) init(ctx context.Context) error {
	if m.plan.OrderBy == nil {
		return nil
	}
	m.h = &itemHeap{asc: m.plan.OrderBy.Asc}
	heap.Init(m.h)
	for i, s := range m.sources {
		if err := m.pullInto(ctx, i, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *Merger) pullInto(ctx context.Context, shardIdx int, s Source) error {
	row, ok, err := s.Next(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	key, isInt := row[m.plan.OrderBy.ColumnIndex].AsInteger()
	if !isInt {
		return sqlerr.Wrap(sqlerr.ErrUnorderableColumn, "order-by column value is not an integer")
	}
	heap.Push(m.h, item{shardIdx: shardIdx, key: key, row: row})
	return nil
}

func (m *Merger) nextOrdered(ctx context.Context) ([]sqltypes.SqlValue, bool, error) {
	if m.h.Len() == 0 {
		return nil, false, nil
	}
	top := heap.Pop(m.h).(item)
	if err := m.pullInto(ctx, top.shardIdx, m.sources[top.shardIdx]); err != nil {
		return nil, false, err
	}
	return top.row, true, nil
}

func (m *Merger) nextUnordered(ctx context.Context) ([]sqltypes.SqlValue, bool, error) {
	for m.next < len(m.sources) {
		row, ok, err := m.sources[m.next].Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return row, true, nil
		}
		m.next++
	}
	return nil, false, nil
}

// CountAggregate sums one COUNT(*) scalar per shard. A shard whose
// stream is already exhausted (Next returns ok=false on the first pull)
// contributes zero rather than being treated as an error.
func CountAggregate(ctx context.Context, sources []Source) (int64, error) {
	var total int64
	for _, s := range sources {
		row, ok, err := s.Next(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		n, isInt := row[0].AsInteger()
		if !isInt {
			return 0, sqlerr.Wrap(sqlerr.ErrEngineError, "count(*) result was not an integer")
		}
		total += n
	}
	return total, nil
}

// item is one heap entry: a pulled row from a shard, keyed by its
// integer ORDER BY cell.
type item struct {
	shardIdx int
	key      int64
	row      []sqltypes.SqlValue
}

// itemHeap implements container/heap.Interface, flipping comparison
// direction for descending ORDER BY so the same structure serves both a
// min-heap and a max-heap.
type itemHeap struct {
	items []item
	asc   bool
}

func (h itemHeap) Len() int { return len(h.items) }
func (h itemHeap) Less(i, j int) bool {
	if h.asc {
		return h.items[i].key < h.items[j].key
	}
	return h.items[i].key > h.items[j].key
}
func (h itemHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *itemHeap) Push(x any)   { h.items = append(h.items, x.(item)) }
func (h *itemHeap) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}
