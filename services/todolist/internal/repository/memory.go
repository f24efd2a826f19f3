package repository

import (
	"context"
	"sync"
	"time"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
)

// MemoryToDoListRepository хранит списки в памяти процесса.
// Мьютекс защищает только map, read-modify-write сервиса не сериализуется.
type MemoryToDoListRepository struct {
	mu    sync.RWMutex
	lists map[string]*models.ToDoList
}

func NewMemoryToDoListRepository() *MemoryToDoListRepository {
	return &MemoryToDoListRepository{lists: make(map[string]*models.ToDoList)}
}

func (r *MemoryToDoListRepository) FindByUserID(ctx context.Context, userID string) (*models.ToDoList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[userID]
	if !ok {
		return nil, nil
	}
	return list.Clone(), nil
}

func (r *MemoryToDoListRepository) CreateIfAbsent(ctx context.Context, list *models.ToDoList) (*models.ToDoList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.lists[list.UserID]; ok {
		return existing.Clone(), nil
	}
	stored := list.Clone()
	stored.Normalize()
	r.lists[list.UserID] = stored
	return stored.Clone(), nil
}

func (r *MemoryToDoListRepository) Save(ctx context.Context, list *models.ToDoList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := list.Clone()
	stored.Normalize()
	if existing, ok := r.lists[list.UserID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.lists[list.UserID] = stored
	return nil
}

// Count - число сохранённых списков
func (r *MemoryToDoListRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lists)
}

func (r *MemoryToDoListRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryToDoListRepository) Close() error {
	return nil
}
