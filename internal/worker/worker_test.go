package worker

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

func spawnTestWorker(t *testing.T) *Worker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shard.db")
	w := Spawn(0, path, zap.NewNop(), time.Millisecond)
	t.Cleanup(w.Close)
	return w
}

func mustOK(t *testing.T, resp Response) Response {
	t.Helper()
	if resp.Err != nil {
		t.Fatalf("unexpected error: %v", resp.Err)
	}
	return resp
}

func TestWorkerCreateInsertQuery(t *testing.T) {
	w := spawnTestWorker(t)

	mustOK(t, <-w.Do(KindPrepare, "CREATE TABLE t (id INTEGER, name TEXT)", nil))
	mustOK(t, <-w.Do(KindExecute, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "INSERT INTO t (id, name) VALUES (?, ?)", nil))
	mustOK(t, <-w.Do(KindExecute, "", []sqltypes.SqlParam{sqltypes.I64(1), sqltypes.Text("a")}))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "SELECT id, name FROM t", nil))
	mustOK(t, <-w.Do(KindQuery, "", nil))
	row := mustOK(t, <-w.Do(KindNext, "", nil))
	if row.EOF {
		t.Fatalf("expected a row, got EOF")
	}
	if n, ok := row.Row[0].AsInteger(); !ok || n != 1 {
		t.Fatalf("expected id=1, got %+v", row.Row[0])
	}
	end := mustOK(t, <-w.Do(KindNext, "", nil))
	if !end.EOF {
		t.Fatalf("expected EOF, got %+v", end)
	}
	mustOK(t, <-w.Do(KindClose, "", nil))
}

func TestWorkerFireAndForgetExecute(t *testing.T) {
	w := spawnTestWorker(t)
	mustOK(t, <-w.Do(KindPrepare, "CREATE TABLE t (id INTEGER)", nil))
	mustOK(t, <-w.Do(KindExecute, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "INSERT INTO t (id) VALUES (?)", nil))
	var replies []chan Response
	for i := int64(0); i < 5; i++ {
		replies = append(replies, w.Do(KindExecute, "", []sqltypes.SqlParam{sqltypes.I64(i)}))
	}
	for _, r := range replies {
		mustOK(t, <-r)
	}
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "SELECT count(*) FROM t", nil))
	mustOK(t, <-w.Do(KindQuery, "", nil))
	row := mustOK(t, <-w.Do(KindNext, "", nil))
	if n, ok := row.Row[0].AsInteger(); !ok || n != 5 {
		t.Fatalf("expected count 5, got %+v", row.Row[0])
	}
}

func TestWorkerRowsEndReturnsToPreparedMidStream(t *testing.T) {
	w := spawnTestWorker(t)
	mustOK(t, <-w.Do(KindPrepare, "CREATE TABLE t (id INTEGER)", nil))
	mustOK(t, <-w.Do(KindExecute, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))
	mustOK(t, <-w.Do(KindPrepare, "INSERT INTO t (id) VALUES (?)", nil))
	mustOK(t, <-w.Do(KindExecute, "", []sqltypes.SqlParam{sqltypes.I64(1)}))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "SELECT id FROM t", nil))
	mustOK(t, <-w.Do(KindQuery, "", nil))

	// End the stream before reading it to exhaustion; the worker must
	// fall back to Prepared, not stay stuck in Streaming.
	mustOK(t, <-w.Do(KindRowsEnd, "", nil))

	// The statement is still open (RowsEnd does not close it): the
	// worker must accept another KindQuery on the same prepared
	// statement.
	mustOK(t, <-w.Do(KindQuery, "", nil))
	row := mustOK(t, <-w.Do(KindNext, "", nil))
	if row.EOF {
		t.Fatalf("expected a row on the re-query, got EOF")
	}
	mustOK(t, <-w.Do(KindRowsEnd, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))
}

func TestWorkerRowsEndAfterNaturalEOFIsANoOp(t *testing.T) {
	w := spawnTestWorker(t)
	mustOK(t, <-w.Do(KindPrepare, "CREATE TABLE t (id INTEGER)", nil))
	mustOK(t, <-w.Do(KindExecute, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "SELECT id FROM t", nil))
	mustOK(t, <-w.Do(KindQuery, "", nil))
	end := mustOK(t, <-w.Do(KindNext, "", nil))
	if !end.EOF {
		t.Fatalf("expected EOF, got %+v", end)
	}
	// The stream already ended naturally; RowsEnd must still be
	// accepted, not treated as a protocol mismatch.
	mustOK(t, <-w.Do(KindRowsEnd, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))
}

func TestWorkerProtocolMismatch(t *testing.T) {
	w := spawnTestWorker(t)
	resp := <-w.Do(KindExecute, "", nil)
	if sqlerr.KindOf(resp.Err) != sqlerr.KindProtocolMismatch {
		t.Fatalf("expected KindProtocolMismatch, got %v (%v)", sqlerr.KindOf(resp.Err), resp.Err)
	}
}

func TestWorkerTransactionRollback(t *testing.T) {
	w := spawnTestWorker(t)
	mustOK(t, <-w.Do(KindPrepare, "CREATE TABLE t (id INTEGER)", nil))
	mustOK(t, <-w.Do(KindExecute, "", nil))
	mustOK(t, <-w.Do(KindClose, "", nil))

	mustOK(t, <-w.Do(KindBegin, "", nil))
	mustOK(t, <-w.Do(KindPrepare, "INSERT INTO t (id) VALUES (?)", nil))
	mustOK(t, <-w.Do(KindExecute, "", []sqltypes.SqlParam{sqltypes.I64(9)}))
	mustOK(t, <-w.Do(KindRollback, "", nil))

	mustOK(t, <-w.Do(KindPrepare, "SELECT count(*) FROM t", nil))
	mustOK(t, <-w.Do(KindQuery, "", nil))
	row := mustOK(t, <-w.Do(KindNext, "", nil))
	if n, ok := row.Row[0].AsInteger(); !ok || n != 0 {
		t.Fatalf("expected count 0 after rollback, got %+v", row.Row[0])
	}
}
