package shardcursor

import (
	"context"
	"strings"

	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

// Execute prepares sqlText, executes it once bound with params, and
// closes it — a convenience for one-shot statements that don't need the
// Stmt handle kept around.
func (h *Handle) Execute(ctx context.Context, sqlText string, params ...sqltypes.SqlParam) error {
	stmt, err := h.Prepare(ctx, sqlText)
	if err != nil {
		return err
	}
	if err := stmt.Execute(ctx, params...); err != nil {
		stmt.Close(ctx)
		return err
	}
	return stmt.Close(ctx)
}

// ExecuteBatch splits sqlText on ';', trims each part, drops empty
// parts, and runs each one through Execute with no parameters. It stops
// at the first error, leaving any remaining statements unrun.
func (h *Handle) ExecuteBatch(ctx context.Context, sqlText string) error {
	for _, part := range strings.Split(sqlText, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := h.Execute(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteMany prepares sqlText once and executes it for every param set
// in paramSets, each routed independently, before closing it. Use this
// over a loop of Handle.Execute calls to avoid re-preparing per row.
func (h *Handle) ExecuteMany(ctx context.Context, sqlText string, paramSets [][]sqltypes.SqlParam) error {
	stmt, err := h.Prepare(ctx, sqlText)
	if err != nil {
		return err
	}
	for _, params := range paramSets {
		if err := stmt.Execute(ctx, params...); err != nil {
			stmt.Close(ctx)
			return err
		}
	}
	return stmt.Close(ctx)
}

// QueryRow prepares sqlText, executes it bound with params, and returns
// its first result row. ErrEmptyResult is returned if the query produced
// no rows.
func (h *Handle) QueryRow(ctx context.Context, sqlText string, params ...sqltypes.SqlParam) (*Row, error) {
	stmt, err := h.Prepare(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer stmt.Close(ctx)

	rows, err := stmt.Query(ctx, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	row, ok, err := rows.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sqlerr.ErrEmptyResult
	}
	return row, nil
}
