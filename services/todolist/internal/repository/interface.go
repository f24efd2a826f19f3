package repository

import (
	"context"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
)

// ToDoListRepository - хранилище агрегатов ToDoList, ключ - userID.
// Версий и блокировок нет: последняя запись побеждает.
type ToDoListRepository interface {
	// FindByUserID возвращает nil, nil если списка нет
	FindByUserID(ctx context.Context, userID string) (*models.ToDoList, error)
	// CreateIfAbsent вставляет список, если его ещё нет, и возвращает сохранённый
	CreateIfAbsent(ctx context.Context, list *models.ToDoList) (*models.ToDoList, error)
	// Save перезаписывает список целиком (upsert по userID)
	Save(ctx context.Context, list *models.ToDoList) error
	Ping(ctx context.Context) error
	Close() error
}
