// Package router decides, for one parsed statement, which shard workers
// must receive it.
//
// # Overview
//
// Almost everything fans out to every shard: DDL, UPDATE/DELETE, any
// SELECT, and any INSERT that does not name both the configured sharding
// table and its sharding column. An INSERT that does name both is never
// fanned out: a single-row INSERT whose sharding column holds either a
// bound-parameter placeholder or a numeric literal routes to exactly one
// shard; multi-row VALUES is rejected with ErrUnsupportedInsertShape, and
// any other value for that column (a sub-expression, a string literal, a
// NULL) is rejected with ErrInvalidShardingKey, mirroring the original
// Router::get_indexes_with_params.
package router
