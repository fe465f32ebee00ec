package router

import (
	"testing"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqlparse"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

func cfg() Config {
	return Config{
		ShardingTable:  "users",
		ShardingColumn: "id",
		NumShards:      4,
		ShardOf:        func(key int64) int { return int(key % 4) },
	}
}

func TestRouteSelectFansOutToAllShards(t *testing.T) {
	stmt, err := sqlparse.Parse("SELECT id FROM users")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	shards, err := Route(stmt, nil, cfg())
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if len(shards) != 4 {
		t.Fatalf("expected fan-out to 4 shards, got %v", shards)
	}
}

func TestRouteInsertPlaceholderSingleShard(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (?1, ?2)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	shards, err := Route(stmt, []sqltypes.SqlParam{sqltypes.I64(7), sqltypes.Text("alice")}, cfg())
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if len(shards) != 1 || shards[0] != 3 {
		t.Fatalf("expected single shard 3, got %v", shards)
	}
}

func TestRouteInsertNumericLiteralSingleShard(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (10, 'bob')")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	shards, err := Route(stmt, nil, cfg())
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if len(shards) != 1 || shards[0] != 2 {
		t.Fatalf("expected single shard 2, got %v", shards)
	}
}

func TestRouteInsertMultiRowOnShardedTableErrors(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b')")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Route(stmt, nil, cfg())
	if sqlerr.KindOf(err) != sqlerr.KindUnsupportedInsertShape {
		t.Fatalf("expected KindUnsupportedInsertShape, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestRouteInsertMultiRowOnNonShardingColumnFansOut(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (name) VALUES ('a'), ('b')")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	shards, err := Route(stmt, nil, cfg())
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if len(shards) != 4 {
		t.Fatalf("expected fan-out to 4 shards, got %v", shards)
	}
}

func TestRouteInsertOtherExpressionFormErrors(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (1 + 1, 'a')")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Route(stmt, nil, cfg())
	if sqlerr.KindOf(err) != sqlerr.KindInvalidShardingKey {
		t.Fatalf("expected KindInvalidShardingKey, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestRouteInsertOtherTableFansOut(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO logs (id, msg) VALUES (1, 'x')")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	shards, err := Route(stmt, nil, cfg())
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if len(shards) != 4 {
		t.Fatalf("expected fan-out to 4 shards, got %v", shards)
	}
}

func TestRoutePlaceholderMissingParam(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (?1, ?2)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Route(stmt, []sqltypes.SqlParam{}, cfg())
	if sqlerr.KindOf(err) != sqlerr.KindShardingParamMissing {
		t.Fatalf("expected KindShardingParamMissing, got %v (%v)", sqlerr.KindOf(err), err)
	}
}

func TestRoutePlaceholderNonIntegerParam(t *testing.T) {
	stmt, err := sqlparse.Parse("INSERT INTO users (id, name) VALUES (?1, ?2)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Route(stmt, []sqltypes.SqlParam{sqltypes.Text("not-an-int"), sqltypes.Text("alice")}, cfg())
	if sqlerr.KindOf(err) != sqlerr.KindInvalidShardingKey {
		t.Fatalf("expected KindInvalidShardingKey, got %v (%v)", sqlerr.KindOf(err), err)
	}
}
