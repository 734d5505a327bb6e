// Package migrate 顺序执行 migrations 目录下的 .sql 文件，已执行的记在 schema_migrations。
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// 多实例同时启动时只让一个执行迁移
const advisoryLockKey int64 = 0x62_61_73_65_36_32

type Options struct {
	Dir string
}

type Result struct {
	Dir     string
	Applied []string
	Skipped []string
}

func Up(ctx context.Context, db *pgxpool.Pool, opts Options) (*Result, error) {
	dir, err := resolveDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockKey); err != nil {
		return nil, fmt.Errorf("migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := appliedVersions(ctx, conn.Conn())
	if err != nil {
		return nil, err
	}

	res := &Result{Dir: dir}
	for _, name := range files {
		if done[name] {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err := apply(ctx, conn.Conn(), dir, name); err != nil {
			return res, err
		}
		slog.Info("migration applied", "file", name)
		res.Applied = append(res.Applied, name)
	}
	return res, nil
}

// ListFiles 返回 dir 下按文件名排序的 .sql 文件（不递归）。
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func appliedVersions(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	done := make(map[string]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}
	return done, nil
}

func apply(ctx context.Context, conn *pgx.Conn, dir, name string) error {
	body, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	})
}

// resolveDir 未配置时先找 ./migrations，再找可执行文件旁的 migrations。
func resolveDir(opt string) (string, error) {
	if strings.TrimSpace(opt) != "" {
		return filepath.Clean(opt), nil
	}
	candidates := []string{"migrations"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "migrations"))
	}
	for _, dir := range candidates {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return filepath.Abs(dir)
		}
	}
	return "", fmt.Errorf("migrations dir not found (tried %s)", strings.Join(candidates, ", "))
}
