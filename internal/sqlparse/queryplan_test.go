package sqlparse

import (
	"testing"

	"github.com/dreamware/shardcursor/internal/sqlerr"
)

func TestBuildPlanOrderByFound(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM t ORDER BY name DESC LIMIT 5 OFFSET 2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	plan, err := BuildPlan(stmt)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.OrderBy == nil || plan.OrderBy.ColumnIndex != 1 || plan.OrderBy.Asc {
		t.Fatalf("expected OrderBy{ColumnIndex:1, Asc:false}, got %+v", plan.OrderBy)
	}
	if plan.Limit == nil || *plan.Limit != 5 {
		t.Fatalf("expected Limit 5, got %+v", plan.Limit)
	}
	if plan.Offset == nil || *plan.Offset != 2 {
		t.Fatalf("expected Offset 2, got %+v", plan.Offset)
	}
}

func TestBuildPlanOrderByBeforeNonIdentItemErrors(t *testing.T) {
	stmt, err := Parse("SELECT count(*), id FROM t ORDER BY id")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindUnorderableColumn {
		t.Fatalf("expected KindUnorderableColumn, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestBuildPlanOrderByColumnNotFound(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM t ORDER BY missing")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindColumnNotFound {
		t.Fatalf("expected KindColumnNotFound, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestBuildPlanCountStarAggregate(t *testing.T) {
	stmt, err := Parse("SELECT count(*) FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	plan, err := BuildPlan(stmt)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.Aggregate == nil || !plan.Aggregate.CountStar {
		t.Fatalf("expected CountStar aggregate, got %+v", plan.Aggregate)
	}
}

func TestBuildPlanNoAggregateForPlainSelect(t *testing.T) {
	stmt, err := Parse("SELECT id FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	plan, err := BuildPlan(stmt)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.Aggregate != nil {
		t.Fatalf("expected no aggregate, got %+v", plan.Aggregate)
	}
}

func TestBuildPlanJSONExtractPermittedAsNonAggregate(t *testing.T) {
	stmt, err := Parse("SELECT id, json_extract(doc) FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	plan, err := BuildPlan(stmt)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.Aggregate != nil {
		t.Fatalf("expected no aggregate, got %+v", plan.Aggregate)
	}
}

func TestBuildPlanCountStarAlongsideOtherItemsErrors(t *testing.T) {
	stmt, err := Parse("SELECT count(*), id FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindUnsupportedQueryShape {
		t.Fatalf("expected KindUnsupportedQueryShape, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestBuildPlanUnsupportedFunctionErrors(t *testing.T) {
	stmt, err := Parse("SELECT sum(x) FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindUnsupportedQueryShape {
		t.Fatalf("expected KindUnsupportedQueryShape, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestBuildPlanQualifiedProjectionItemErrors(t *testing.T) {
	stmt, err := Parse("SELECT t.id FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindUnsupportedQueryShape {
		t.Fatalf("expected KindUnsupportedQueryShape, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestBuildPlanAliasedProjectionItemErrors(t *testing.T) {
	stmt, err := Parse("SELECT id AS foo FROM t")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = BuildPlan(stmt)
	if sqlerr.KindOf(err) != sqlerr.KindUnsupportedQueryShape {
		t.Fatalf("expected KindUnsupportedQueryShape, got %v (%v)", sqlerr.KindOf(err), err)
	}
}
