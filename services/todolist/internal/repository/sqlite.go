package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteQueries = sqlQueries{
	schema: `CREATE TABLE IF NOT EXISTS todolists (
		user_id    TEXT PRIMARY KEY,
		tasks      TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	selectByUser: `SELECT tasks, created_at, updated_at FROM todolists WHERE user_id = ?`,
	insertIgnore: `INSERT OR IGNORE INTO todolists (user_id, tasks, created_at, updated_at) VALUES (?, ?, ?, ?)`,
	upsert: `INSERT INTO todolists (user_id, tasks, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET tasks = excluded.tasks, updated_at = excluded.updated_at`,
}

type SQLiteToDoListRepository struct {
	*sqlToDoListRepository
}

// NewSQLiteToDoListRepository открывает файл базы, создавая каталог при необходимости
func NewSQLiteToDoListRepository(ctx context.Context, path string) (*SQLiteToDoListRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	repo, err := openSQL(ctx, "sqlite3", dsn, sqliteQueries)
	if err != nil {
		return nil, err
	}
	// sqlite не любит параллельных писателей
	repo.db.SetMaxOpenConns(1)
	return &SQLiteToDoListRepository{repo}, nil
}
