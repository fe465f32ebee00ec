// Package merge combines the per-shard result streams of a routed
// SELECT into the single ordered stream the caller sees.
//
// # Overview
//
// Every shard already executed the LIMIT/OFFSET-stripped query (see
// internal/sqlparse.Rewrite), so each shard stream is locally ordered
// but globally unmerged and globally unbounded. Merger re-applies the
// global ORDER BY via a k-way heap merge (ascending queries use a
// min-heap, descending a max-heap), then applies the global LIMIT/OFFSET
// once over the merged stream. Queries without an ORDER BY are merged by
// simple shard-order chaining, since there is no ordering to preserve
// across shard boundaries.
//
// COUNT(*) queries skip row merging entirely: CountAggregate sums one
// scalar per shard. A shard that produced no row at all (as opposed to a
// row holding zero) contributes nothing to the sum rather than being
// treated as an error.
package merge
