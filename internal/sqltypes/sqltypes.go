// Package sqltypes defines the tagged value types that cross the worker
// protocol boundary: SqlParam for bound input parameters and SqlValue for
// output cells read back from a row. See doc.go for the full package
// overview.
package sqltypes

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// SqlParam is a bound input parameter. Widened integer variants are
// carried through to the engine without narrowing — the caller chose the
// width, and it is preserved all the way to the driver bind call.
type SqlParam struct {
	kind paramKind
	i64  int64
	u32  uint32
	u16  uint16
	text string
}

type paramKind int

const (
	paramI64 paramKind = iota
	paramU32
	paramU16
	paramText
)

// I64 wraps a signed 64-bit integer parameter.
func I64(v int64) SqlParam { return SqlParam{kind: paramI64, i64: v} }

// U32 wraps an unsigned 32-bit integer parameter.
func U32(v uint32) SqlParam { return SqlParam{kind: paramU32, u32: v} }

// U16 wraps an unsigned 16-bit integer parameter.
func U16(v uint16) SqlParam { return SqlParam{kind: paramU16, u16: v} }

// Text wraps a UTF-8 text parameter.
func Text(v string) SqlParam { return SqlParam{kind: paramText, text: v} }

// IsInteger reports whether the param carries one of the integer
// variants (I64, U32, U16), and returns its value widened to int64.
func (p SqlParam) IsInteger() (int64, bool) {
	switch p.kind {
	case paramI64:
		return p.i64, true
	case paramU32:
		return int64(p.u32), true
	case paramU16:
		return int64(p.u16), true
	default:
		return 0, false
	}
}

// AsText returns the text value and whether the param was a Text variant.
func (p SqlParam) AsText() (string, bool) {
	if p.kind == paramText {
		return p.text, true
	}
	return "", false
}

// Value implements driver.Valuer so a SqlParam can be passed directly to
// database/sql's Exec/Query argument list.
func (p SqlParam) Value() (driver.Value, error) {
	switch p.kind {
	case paramI64:
		return p.i64, nil
	case paramU32:
		return int64(p.u32), nil
	case paramU16:
		return int64(p.u16), nil
	case paramText:
		return p.text, nil
	default:
		return nil, fmt.Errorf("sqltypes: unknown param kind %d", p.kind)
	}
}

func (p SqlParam) String() string {
	switch p.kind {
	case paramI64:
		return fmt.Sprintf("I64(%d)", p.i64)
	case paramU32:
		return fmt.Sprintf("U32(%d)", p.u32)
	case paramU16:
		return fmt.Sprintf("U16(%d)", p.u16)
	case paramText:
		return fmt.Sprintf("Text(%q)", p.text)
	default:
		return "SqlParam(?)"
	}
}

// ValueKind identifies the variant carried by a SqlValue.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInteger
	ValueReal
	ValueText
	ValueBlob
)

// SqlValue is an output cell read back from a row, by column index.
type SqlValue struct {
	Kind    ValueKind
	Integer int64
	Real    float64
	Text    []byte
	Blob    []byte
}

// FromDriver converts a raw value returned by database/sql's row scan into
// a SqlValue. declType is the column's declared SQLite type affinity
// (e.g. "BLOB", "TEXT"); it disambiguates the []byte case, since both
// TEXT and BLOB columns surface as []byte from the driver.
func FromDriver(v any, declType string) SqlValue {
	switch t := v.(type) {
	case nil:
		return SqlValue{Kind: ValueNull}
	case int64:
		return SqlValue{Kind: ValueInteger, Integer: t}
	case float64:
		return SqlValue{Kind: ValueReal, Real: t}
	case []byte:
		if isBlobAffinity(declType) {
			return SqlValue{Kind: ValueBlob, Blob: append([]byte(nil), t...)}
		}
		return SqlValue{Kind: ValueText, Text: append([]byte(nil), t...)}
	case string:
		return SqlValue{Kind: ValueText, Text: []byte(t)}
	default:
		return SqlValue{Kind: ValueText, Text: []byte(fmt.Sprintf("%v", t))}
	}
}

func isBlobAffinity(declType string) bool {
	return strings.EqualFold(declType, "BLOB")
}

// AsInteger returns the integer value and whether Kind is ValueInteger.
func (v SqlValue) AsInteger() (int64, bool) {
	return v.Integer, v.Kind == ValueInteger
}

func (v SqlValue) String() string {
	switch v.Kind {
	case ValueNull:
		return "Null"
	case ValueInteger:
		return fmt.Sprintf("Integer(%d)", v.Integer)
	case ValueReal:
		return fmt.Sprintf("Real(%g)", v.Real)
	case ValueText:
		return fmt.Sprintf("Text(%q)", string(v.Text))
	case ValueBlob:
		return fmt.Sprintf("Blob(%d bytes)", len(v.Blob))
	default:
		return "SqlValue(?)"
	}
}
