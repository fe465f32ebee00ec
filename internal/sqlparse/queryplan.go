package sqlparse

import (
	"strings"

	"github.com/dreamware/shardcursor/internal/sqlerr"
)

// QueryPlan is the coordinator-facing summary of a parsed SELECT: enough
// to drive per-shard execution and cross-shard merge without either side
// re-parsing the statement.
type QueryPlan struct {
	OrderBy   *OrderByPlan
	Limit     *uint64
	Offset    *uint64
	Aggregate *AggregatePlan
}

// OrderByPlan locates the sort key by its position in the projection
// list, since that is the only handle the merge stage (operating on
// scanned row cells, not column names) has on it.
type OrderByPlan struct {
	ColumnIndex int
	Asc         bool
}

// AggregatePlan flags a projection that must be combined across shards
// rather than merged row-by-row.
type AggregatePlan struct {
	CountStar bool
}

// BuildPlan derives a QueryPlan from a parsed SELECT statement.
//
// The ORDER BY column is located by scanning the projection list in
// order. The scan stops successfully the moment it reaches the matching
// identifier; it stops with an error the moment it reaches ANY
// projection item that is not a bare identifier, even if the real match
// appears later in the list — this mirrors the original implementation,
// which could not prove a later item orderable without evaluating it,
// and refused to guess. Only once the whole projection is known to be
// free of non-identifier items ahead of the match does "column not
// found" become the right error.
func BuildPlan(stmt *Statement) (*QueryPlan, error) {
	if stmt.Kind != KindSelect || stmt.Select == nil {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "BuildPlan requires a parsed SELECT")
	}
	sel := stmt.Select
	plan := &QueryPlan{Limit: sel.Limit, Offset: sel.Offset}

	if sel.OrderBy != nil {
		idx, err := findOrderColumnIndex(sel.Projection, sel.OrderBy.Ident)
		if err != nil {
			return nil, err
		}
		plan.OrderBy = &OrderByPlan{ColumnIndex: idx, Asc: sel.OrderBy.Asc}
	}

	agg, err := findAggregate(sel.Projection)
	if err != nil {
		return nil, err
	}
	plan.Aggregate = agg
	return plan, nil
}

func findOrderColumnIndex(proj []ProjectionItem, ident string) (int, error) {
	for i, item := range proj {
		if item.IsIdent {
			if strings.EqualFold(item.Ident, ident) {
				return i, nil
			}
			continue
		}
		return 0, sqlerr.Wrap(sqlerr.ErrUnorderableColumn, "projection item before the ORDER BY column is not a bare identifier")
	}
	return 0, sqlerr.Wrap(sqlerr.ErrColumnNotFound, "ORDER BY column not present in projection list")
}

// findAggregate recognizes the single COUNT(*) projection shape and
// validates the rest of the projection list along the way: a bare
// identifier is always fine, json_extract(...) is permitted and treated
// as non-aggregate, count(*) is only valid as the sole projection item,
// and any other function call or any named/qualified projection item
// (alias, "t.col", literal, expression) is rejected outright rather than
// silently treated as a plain column.
func findAggregate(proj []ProjectionItem) (*AggregatePlan, error) {
	for _, item := range proj {
		if item.IsIdent {
			continue
		}
		if item.Func == nil {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "projection item must be a bare identifier or a supported function call")
		}
		switch {
		case strings.EqualFold(item.Func.Name, "count"):
			if len(proj) != 1 {
				return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "count(*) must be the only projection item")
			}
			if len(item.Func.Args) != 1 || !item.Func.Args[0].Wildcard {
				return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "count() is only supported as count(*)")
			}
			return &AggregatePlan{CountStar: true}, nil
		case strings.EqualFold(item.Func.Name, "json_extract"):
			continue
		default:
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "unsupported function in projection: "+item.Func.Name)
		}
	}
	return nil, nil
}
