package router

import (
	"strconv"
	"strings"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqlparse"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Config carries the pieces of the coordinator configuration the router
// needs: which table/column is sharded, how many shards exist, and the
// user-supplied function mapping a sharding key to a shard index.
type Config struct {
	ShardingTable  string
	ShardingColumn string
	NumShards      int
	ShardOf        func(int64) int
}

// Route returns the set of shard indexes that must receive stmt, given
// the parameter list it was (or will be) bound with. A single-element
// result means the statement was routed to exactly one shard; any other
// result fans the statement out to every shard.
func Route(stmt *sqlparse.Statement, params []sqltypes.SqlParam, cfg Config) ([]int, error) {
	if stmt.Kind != sqlparse.KindInsert || stmt.Insert == nil {
		return allShards(cfg.NumShards), nil
	}
	ins := stmt.Insert
	if !strings.EqualFold(ins.Table, cfg.ShardingTable) {
		return allShards(cfg.NumShards), nil
	}

	colIdx := -1
	for i, c := range ins.Columns {
		if strings.EqualFold(c, cfg.ShardingColumn) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return allShards(cfg.NumShards), nil
	}

	// Table and sharding column both match: this insert must be routed,
	// or rejected, not silently fanned out.
	if len(ins.Rows) != 1 {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "multi-row VALUES is not supported for a routed insert")
	}

	expr := ins.Rows[0][colIdx]
	var key int64
	switch {
	case expr.IsPlaceholder:
		if colIdx >= len(params) {
			return nil, sqlerr.Wrap(sqlerr.ErrShardingParamMissing, "sharding column's placeholder has no bound parameter at that position")
		}
		v, ok := params[colIdx].IsInteger()
		if !ok {
			return nil, sqlerr.Wrap(sqlerr.ErrInvalidShardingKey, "bound sharding parameter is not an integer")
		}
		key = v
	case expr.IsNumber:
		n, err := strconv.ParseInt(expr.Number, 10, 64)
		if err != nil {
			return nil, sqlerr.Wrap(sqlerr.ErrInvalidShardingKey, "sharding column literal is not a valid integer")
		}
		key = n
	default:
		return nil, sqlerr.Wrap(sqlerr.ErrInvalidShardingKey, "sharding column expression is neither a placeholder nor a numeric literal")
	}

	shard := cfg.ShardOf(key)
	if shard < 0 || shard >= cfg.NumShards {
		return nil, sqlerr.Wrap(sqlerr.ErrInvalidShardingKey, "shard_of returned an out-of-range shard index")
	}
	return []int{shard}, nil
}

func allShards(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
