package shardcursor

import (
	"fmt"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Row is one merged result row, accessible either by column position or,
// via AsMap, by column name.
type Row struct {
	values      []sqltypes.SqlValue
	columnNames []string
}

// Len reports the number of cells in the row.
func (r *Row) Len() int { return len(r.values) }

// Value returns the raw tagged value at idx.
func (r *Row) Value(idx int) sqltypes.SqlValue { return r.values[idx] }

// AsMap copies the row into a column-name-keyed map, for callers that
// use QueryMap.
func (r *Row) AsMap() map[string]sqltypes.SqlValue {
	m := make(map[string]sqltypes.SqlValue, len(r.values))
	for i, v := range r.values {
		name := ""
		if i < len(r.columnNames) {
			name = r.columnNames[i]
		}
		m[name] = v
	}
	return m
}

// Get reads column idx from row, converted to T. Supported T:
// int64, string, []byte, float64.
func Get[T any](row *Row, idx int) (T, error) {
	var zero T
	if idx < 0 || idx >= len(row.values) {
		return zero, sqlerr.Wrap(sqlerr.ErrColumnNotFound, "column index out of range")
	}
	v := row.values[idx]
	switch any(zero).(type) {
	case int64:
		n, ok := v.AsInteger()
		if !ok {
			return zero, fmt.Errorf("shardcursor: column %d is not an integer (kind %v)", idx, v.Kind)
		}
		return any(n).(T), nil
	case string:
		return any(string(v.Text)).(T), nil
	case []byte:
		return any(v.Blob).(T), nil
	case float64:
		return any(v.Real).(T), nil
	default:
		return zero, fmt.Errorf("shardcursor: unsupported Get type %T", zero)
	}
}
