package sqlparse

import "strings"

// Rewrite returns the statement text with any top-level LIMIT/OFFSET
// clause stripped, so each shard worker executes the unbounded query and
// the global LIMIT/OFFSET is applied once, after merge, by
// internal/merge. It works by truncating the original source at the
// byte offset of the LIMIT token rather than re-serializing the parsed
// statement, since this dialect's projection/ORDER BY text is passed
// through opaquely and there is nothing to gain by reconstructing it.
func Rewrite(stmt *Statement) string {
	if stmt.limitTok == nil {
		return strings.TrimSpace(stmt.Raw)
	}
	return strings.TrimSpace(stmt.Raw[:stmt.limitTok.Start])
}
