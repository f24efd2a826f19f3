package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
)

// sqlQueries - диалект SQL для конкретного драйвера
type sqlQueries struct {
	schema       string
	selectByUser string
	insertIgnore string
	upsert       string
}

// sqlToDoListRepository хранит задачи пользователя одной JSON-колонкой,
// так агрегат читается и пишется одной строкой
type sqlToDoListRepository struct {
	db      *sql.DB
	queries sqlQueries
}

func openSQL(ctx context.Context, driver, dsn string, q sqlQueries) (*sqlToDoListRepository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err = db.ExecContext(ctx, q.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &sqlToDoListRepository{db: db, queries: q}, nil
}

func (r *sqlToDoListRepository) FindByUserID(ctx context.Context, userID string) (*models.ToDoList, error) {
	var (
		raw  []byte
		list = &models.ToDoList{UserID: userID}
	)
	err := r.db.QueryRowContext(ctx, r.queries.selectByUser, userID).Scan(&raw, &list.CreatedAt, &list.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &list.Tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks for user %s: %w", userID, err)
	}
	list.Normalize()
	return list, nil
}

func (r *sqlToDoListRepository) CreateIfAbsent(ctx context.Context, list *models.ToDoList) (*models.ToDoList, error) {
	raw, err := encodeTasks(list)
	if err != nil {
		return nil, err
	}
	created, updated := timestamps(list)
	if _, err := r.db.ExecContext(ctx, r.queries.insertIgnore, list.UserID, raw, created, updated); err != nil {
		return nil, err
	}
	stored, err := r.FindByUserID(ctx, list.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("todolist for user %s vanished after insert", list.UserID)
	}
	return stored, nil
}

func (r *sqlToDoListRepository) Save(ctx context.Context, list *models.ToDoList) error {
	raw, err := encodeTasks(list)
	if err != nil {
		return err
	}
	created, updated := timestamps(list)
	_, err = r.db.ExecContext(ctx, r.queries.upsert, list.UserID, raw, created, updated)
	return err
}

func (r *sqlToDoListRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlToDoListRepository) Close() error {
	return r.db.Close()
}

// encodeTasks возвращает строку: lib/pq передаёт []byte как bytea
func encodeTasks(list *models.ToDoList) (string, error) {
	tasks := list.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	return string(raw), nil
}

func timestamps(list *models.ToDoList) (time.Time, time.Time) {
	now := time.Now().UTC()
	created, updated := list.CreatedAt, list.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return created, updated
}
