package repository

import (
	"context"

	_ "github.com/lib/pq"
)

var postgresQueries = sqlQueries{
	schema: `CREATE TABLE IF NOT EXISTS todolists (
		user_id    TEXT PRIMARY KEY,
		tasks      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	selectByUser: `SELECT tasks, created_at, updated_at FROM todolists WHERE user_id = $1`,
	insertIgnore: `INSERT INTO todolists (user_id, tasks, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`,
	upsert: `INSERT INTO todolists (user_id, tasks, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET tasks = EXCLUDED.tasks, updated_at = EXCLUDED.updated_at`,
}

type PostgresToDoListRepository struct {
	*sqlToDoListRepository
}

func NewPostgresToDoListRepository(ctx context.Context, dsn string) (*PostgresToDoListRepository, error) {
	repo, err := openSQL(ctx, "postgres", dsn, postgresQueries)
	if err != nil {
		return nil, err
	}
	return &PostgresToDoListRepository{repo}, nil
}
