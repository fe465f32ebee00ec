// Command shardcursor-example stands up a 2-shard users table under
// /tmp/shardcursor-example, inserts ten rows inside a single
// transaction, and prints them back out in id order.
//
// Architecture:
//
//	┌──────────────────────────────────┐
//	│      shardcursor.Handle          │
//	├──────────────────────────────────┤
//	│  shard 0: /tmp/.../0.sqlite      │
//	│  shard 1: /tmp/.../1.sqlite      │
//	└──────────────────────────────────┘
//
// Usage:
//
//	go run ./cmd/shardcursor-example
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dreamware/shardcursor"
	"github.com/dreamware/shardcursor/internal/sqltypes"
)

const initSQL = `CREATE TABLE IF NOT EXISTS user (
	id INTEGER NOT NULL,
	name TEXT NOT NULL,
	age INTEGER NOT NULL
)`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	dir := filepath.Join(os.TempDir(), "shardcursor-example")

	h, err := shardcursor.Open(shardcursor.Config{
		DBPaths:        []string{filepath.Join(dir, "0.sqlite"), filepath.Join(dir, "1.sqlite")},
		ShardingTable:  "user",
		ShardingColumn: "id",
		ShardOf:        func(key int64) int { return int(uint32(key) % 2) },
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer h.Close()

	ctx := context.Background()
	if err := h.Execute(ctx, initSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := h.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(ctx, "INSERT INTO user (id, name, age) VALUES (?1, ?2, ?3)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	for i := int64(0); i < 10; i++ {
		if err := stmt.Execute(ctx, sqltypes.U32(uint32(i)), sqltypes.Text(fmt.Sprintf("name%d", i)), sqltypes.U16(uint16(i))); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := stmt.Close(ctx); err != nil {
		return fmt.Errorf("close insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	sel, err := h.Prepare(ctx, "SELECT id, name, age FROM user ORDER BY id")
	if err != nil {
		return fmt.Errorf("prepare select: %w", err)
	}
	defer sel.Close(ctx)
	rows, err := sel.Query(ctx)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close(ctx)

	for {
		row, ok, err := rows.Next(ctx)
		if err != nil {
			return fmt.Errorf("next: %w", err)
		}
		if !ok {
			break
		}
		id, _ := shardcursor.Get[int64](row, 0)
		name, _ := shardcursor.Get[string](row, 1)
		age, _ := shardcursor.Get[int64](row, 2)
		fmt.Printf("id=%d name=%s age=%d\n", id, name, age)
	}
	return nil
}
