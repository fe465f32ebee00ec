// Package sqlerr defines the error taxonomy shared by every layer of
// shardcursor, from parsing down to the per-shard worker protocol.
//
// Every sentinel here is meant to be compared with errors.Is, and wrapped
// with call-site context via fmt.Errorf("...: %w", ...). Errors that cross
// in from the embedded SQL engine are wrapped with EngineError so callers
// can still unwrap to the driver's own error when they need to.
package sqlerr

import (
	"errors"
	"fmt"

	perrors "github.com/pkg/errors"
)

// Kind identifies which class of failure a sqlerr value belongs to,
// letting callers branch on a reason code instead of string-matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindParseError
	KindUnsupportedQueryShape
	KindUnsupportedInsertShape
	KindColumnNotFound
	KindUnorderableColumn
	KindInvalidShardingKey
	KindShardingParamMissing
	KindProtocolMismatch
	KindEngineError
	KindChannelClosed
	KindEmptyResult
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindUnsupportedQueryShape:
		return "UnsupportedQueryShape"
	case KindUnsupportedInsertShape:
		return "UnsupportedInsertShape"
	case KindColumnNotFound:
		return "ColumnNotFound"
	case KindUnorderableColumn:
		return "UnorderableColumn"
	case KindInvalidShardingKey:
		return "InvalidShardingKey"
	case KindShardingParamMissing:
		return "ShardingParamMissing"
	case KindProtocolMismatch:
		return "ProtocolMismatch"
	case KindEngineError:
		return "EngineError"
	case KindChannelClosed:
		return "ChannelClosed"
	case KindEmptyResult:
		return "EmptyResult"
	default:
		return "Unknown"
	}
}

// Sentinel errors for each named kind in spec §7. Wrap with %w to add
// context; the sentinel survives errors.Is across wraps.
var (
	ErrParseError             = errors.New("shardcursor: parse error")
	ErrUnsupportedQueryShape  = errors.New("shardcursor: unsupported query shape")
	ErrUnsupportedInsertShape = errors.New("shardcursor: unsupported insert shape")
	ErrColumnNotFound         = errors.New("shardcursor: column not found")
	ErrUnorderableColumn      = errors.New("shardcursor: order-by column is not an integer")
	ErrInvalidShardingKey     = errors.New("shardcursor: invalid sharding key")
	ErrShardingParamMissing   = errors.New("shardcursor: sharding parameter missing")
	ErrProtocolMismatch       = errors.New("shardcursor: worker response did not match pending request")
	ErrEngineError            = errors.New("shardcursor: embedded engine error")
	ErrChannelClosed          = errors.New("shardcursor: worker channel closed")
	ErrEmptyResult            = errors.New("shardcursor: query_row found no row")
)

var sentinelKind = map[error]Kind{
	ErrParseError:             KindParseError,
	ErrUnsupportedQueryShape:  KindUnsupportedQueryShape,
	ErrUnsupportedInsertShape: KindUnsupportedInsertShape,
	ErrColumnNotFound:         KindColumnNotFound,
	ErrUnorderableColumn:      KindUnorderableColumn,
	ErrInvalidShardingKey:     KindInvalidShardingKey,
	ErrShardingParamMissing:   KindShardingParamMissing,
	ErrProtocolMismatch:       KindProtocolMismatch,
	ErrEngineError:            KindEngineError,
	ErrChannelClosed:          KindChannelClosed,
	ErrEmptyResult:            KindEmptyResult,
}

// KindOf walks err's wrap chain and returns the Kind of the first sqlerr
// sentinel it finds, or KindUnknown if none match.
func KindOf(err error) Kind {
	for sentinel, kind := range sentinelKind {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// Wrap attaches msg as context to a sqlerr sentinel, preserving it for
// errors.Is.
func Wrap(sentinel error, msg string) error {
	return fmt.Errorf("%s: %w", msg, sentinel)
}

// Engine wraps an error returned by the embedded SQL engine (open,
// prepare, bind, execute, row conversion, commit, rollback) so it is
// classified as KindEngineError while retaining the original error for
// inspection via errors.Is/errors.As.
func Engine(cause error) error {
	if cause == nil {
		return nil
	}
	return perrors.WithStack(fmt.Errorf("%w: %w", cause, ErrEngineError))
}
