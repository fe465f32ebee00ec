package shardcursor

import (
	"context"
	"sync"

	"github.com/dreamware/shardcursor/internal/merge"
	"github.com/dreamware/shardcursor/internal/router"
	"github.com/dreamware/shardcursor/internal/sqlparse"
	"github.com/dreamware/shardcursor/internal/sqltypes"
	"github.com/dreamware/shardcursor/internal/worker"
)

// Stmt is a parsed statement, reusable across any number of
// Execute/Query calls. Each call re-routes independently since an
// INSERT's sharding key usually arrives bound, not literal.
type Stmt struct {
	h         *Handle
	parsed    *sqlparse.Statement
	plan      *sqlparse.QueryPlan // non-nil for SELECT
	rewritten string              // LIMIT/OFFSET-stripped text sent to shards, for SELECT

	mu       sync.Mutex
	prepared map[int]bool
	pending  []chan worker.Response
}

// Prepare parses sqlText and returns a reusable Stmt.
func (h *Handle) Prepare(_ context.Context, sqlText string) (*Stmt, error) {
	parsed, err := sqlparse.Parse(sqlText)
	if err != nil {
		return nil, err
	}

	stmt := &Stmt{h: h, parsed: parsed, rewritten: sqlText, prepared: make(map[int]bool)}
	if parsed.Kind == sqlparse.KindSelect {
		plan, err := sqlparse.BuildPlan(parsed)
		if err != nil {
			return nil, err
		}
		stmt.plan = plan
		stmt.rewritten = sqlparse.Rewrite(parsed)
	}
	return stmt, nil
}

func (s *Stmt) route(params []sqltypes.SqlParam) ([]int, error) {
	return router.Route(s.parsed, params, s.h.routerConfig())
}

func (s *Stmt) ensurePrepared(ctx context.Context, shardIdx int) error {
	s.mu.Lock()
	if s.prepared[shardIdx] {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	resp := <-s.h.workers[shardIdx].Do(worker.KindPrepare, s.rewritten, nil)
	if resp.Err != nil {
		return resp.Err
	}
	s.mu.Lock()
	s.prepared[shardIdx] = true
	s.mu.Unlock()
	return nil
}

// Execute dispatches the statement, bound with params, to whichever
// shard(s) it routes to. It does not wait for the engine to finish
// executing: the reply is collected later, by count, in Close. Callers
// that need the error from a specific Execute immediately should use
// Handle.Execute instead, which prepares, executes, and closes in one
// call.
func (s *Stmt) Execute(ctx context.Context, params ...sqltypes.SqlParam) error {
	targets, err := s.route(params)
	if err != nil {
		return err
	}
	for _, idx := range targets {
		if err := s.ensurePrepared(ctx, idx); err != nil {
			return err
		}
		reply := s.h.workers[idx].Do(worker.KindExecute, "", params)
		s.mu.Lock()
		s.pending = append(s.pending, reply)
		s.mu.Unlock()
	}
	return nil
}

// Query dispatches the statement, bound with params, to whichever
// shard(s) it routes to and returns a Rows over their merged result.
func (s *Stmt) Query(ctx context.Context, params ...sqltypes.SqlParam) (*Rows, error) {
	targets, err := s.route(params)
	if err != nil {
		return nil, err
	}

	var sources []*shardSource
	var columnNames []string
	for _, idx := range targets {
		if err := s.ensurePrepared(ctx, idx); err != nil {
			return nil, err
		}
		resp := <-s.h.workers[idx].Do(worker.KindQuery, "", params)
		if resp.Err != nil {
			return nil, resp.Err
		}
		if columnNames == nil {
			columnNames = resp.ColumnNames
		}
		sources = append(sources, &shardSource{w: s.h.workers[idx]})
	}

	merged := make([]merge.Source, len(sources))
	workers := make([]*worker.Worker, len(sources))
	for i, src := range sources {
		merged[i] = src
		workers[i] = src.w
	}

	if s.plan != nil && s.plan.Aggregate != nil && s.plan.Aggregate.CountStar {
		total, err := merge.CountAggregate(ctx, merged)
		if err != nil {
			return nil, err
		}
		return newCountRows(total, columnNames, workers), nil
	}

	plan := s.plan
	if plan == nil {
		plan = &sqlparse.QueryPlan{}
	}
	return newMergedRows(merge.New(merged, plan), columnNames, workers), nil
}

// QueryMap runs s bound with params and converts every merged row
// through mapFn, mirroring query_map(params, row -> T) -> iterator<T>.
// Go methods cannot take their own type parameters, so this is a
// package-level function rather than a method on Stmt. It collects the
// mapped values eagerly since this package exposes no public iterator
// type; callers that want to stop early without buffering the whole
// result set should use Stmt.Query and Rows.Next directly.
func QueryMap[T any](ctx context.Context, s *Stmt, mapFn func(*Row) (T, error), params ...sqltypes.SqlParam) ([]T, error) {
	rows, err := s.Query(ctx, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	var out []T
	for {
		row, ok, err := rows.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		v, err := mapFn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// Close drains every outstanding fire-and-forget Execute reply, then
// closes the statement on every shard it was prepared against.
func (s *Stmt) Close(_ context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	prepared := make([]int, 0, len(s.prepared))
	for idx := range s.prepared {
		prepared = append(prepared, idx)
	}
	s.mu.Unlock()

	var firstErr error
	for _, reply := range pending {
		if resp := <-reply; resp.Err != nil && firstErr == nil {
			firstErr = resp.Err
		}
	}
	for _, idx := range prepared {
		if resp := <-s.h.workers[idx].Do(worker.KindClose, "", nil); resp.Err != nil && firstErr == nil {
			firstErr = resp.Err
		}
	}
	return firstErr
}

// shardSource adapts a worker to the merge package's pull-based Source
// interface by issuing KindNext requests one at a time.
type shardSource struct {
	w *worker.Worker
}

func (s *shardSource) Next(_ context.Context) ([]sqltypes.SqlValue, bool, error) {
	resp := <-s.w.Do(worker.KindNext, "", nil)
	if resp.Err != nil {
		return nil, false, resp.Err
	}
	if resp.EOF {
		return nil, false, nil
	}
	return resp.Row, true, nil
}
