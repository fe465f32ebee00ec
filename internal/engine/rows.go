package engine

import (
	"context"
	"database/sql"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Rows streams a query's result set one row at a time.
type Rows struct {
	rows     *sql.Rows
	colTypes []*sql.ColumnType
}

// Next advances to the next row and converts its cells to SqlValue. The
// second return value is false once the result set is exhausted; in
// that case the first return value is nil and err is nil unless the
// underlying scan failed.
func (r *Rows) Next(_ context.Context) ([]sqltypes.SqlValue, bool, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, false, sqlerr.Engine(err)
		}
		return nil, false, nil
	}

	raw := make([]any, len(r.colTypes))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, false, sqlerr.Engine(err)
	}

	vals := make([]sqltypes.SqlValue, len(raw))
	for i, v := range raw {
		vals[i] = sqltypes.FromDriver(v, r.colTypes[i].DatabaseTypeName())
	}
	return vals, true, nil
}

// ColumnCount reports the number of columns in the result set.
func (r *Rows) ColumnCount() int { return len(r.colTypes) }

// ColumnNames reports the result set's column names, in order.
func (r *Rows) ColumnNames() []string {
	names := make([]string, len(r.colTypes))
	for i, ct := range r.colTypes {
		names[i] = ct.Name()
	}
	return names
}

// Close releases the underlying rows handle.
func (r *Rows) Close() error {
	if err := r.rows.Close(); err != nil {
		return sqlerr.Engine(err)
	}
	return nil
}
