package presenter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/client/todoclient"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

var (
	ErrEmptyTitle  = errors.New("please enter a valid title")
	ErrRefRequired = errors.New("reference required")
)

// Store - операции хранилища задач, которые использует доска
type Store interface {
	GetToDoList(ctx context.Context, userID string) (*todoclient.ToDoList, error)
	ReplaceTasks(ctx context.Context, userID string, tasks []todoclient.Task) (*todoclient.ToDoList, error)
	DeleteTask(ctx context.Context, userID, taskID string) (*todoclient.ToDoList, error)
	AddSubtask(ctx context.Context, userID, taskID, title string) (*todoclient.ToDoList, error)
	ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*todoclient.ToDoList, error)
	DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) (*todoclient.ToDoList, error)
}

// TaskView - задача с производными полями, посчитанными на клиенте
type TaskView struct {
	todoclient.Task
	Completed int
	Total     int
	Percent   float64
	Bucket    progress.Bucket
}

type View struct {
	UserID string
	Tasks  []TaskView
	Status progress.Counts
}

// Derive пересчитывает прогресс и сводку по последнему подтверждённому состоянию.
// Поля progress/taskStatus из ответа сервера не используются.
func Derive(list todoclient.ToDoList) View {
	v := View{UserID: list.UserID, Tasks: make([]TaskView, 0, len(list.Tasks))}
	for _, t := range list.Tasks {
		done := 0
		for _, st := range t.Subtasks {
			if st.CompletionStatus {
				done++
			}
		}
		total := len(t.Subtasks)
		v.Tasks = append(v.Tasks, TaskView{
			Task:      t,
			Completed: done,
			Total:     total,
			Percent:   progress.Percent(done, total),
			Bucket:    progress.Classify(done, total),
		})
		v.Status.Add(done, total)
	}
	return v
}

// Board хранит последнее подтверждённое сервером состояние списка.
// Каждое действие пользователя - один вызов хранилища; при ошибке состояние не меняется.
type Board struct {
	store  Store
	userID string
	list   *todoclient.ToDoList
}

func NewBoard(store Store, userID string) *Board {
	return &Board{store: store, userID: userID}
}

func (b *Board) View() View {
	if b.list == nil {
		return View{UserID: b.userID}
	}
	return Derive(*b.list)
}

func (b *Board) Refresh(ctx context.Context) error {
	list, err := b.store.GetToDoList(ctx, b.userID)
	if err != nil {
		return err
	}
	b.list = list
	return nil
}

// AddTask отправляет существующие задачи плюс новую одним replaceTasks
func (b *Board) AddTask(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if err := b.ensureLoaded(ctx); err != nil {
		return err
	}

	tasks := make([]todoclient.Task, 0, len(b.list.Tasks)+1)
	tasks = append(tasks, b.list.Tasks...)
	tasks = append(tasks, todoclient.Task{Title: title, Subtasks: []todoclient.Subtask{}})

	return b.apply(b.store.ReplaceTasks(ctx, b.userID, tasks))
}

// AddSubtask после добавления перечитывает список целиком
func (b *Board) AddSubtask(ctx context.Context, taskID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if _, err := b.store.AddSubtask(ctx, b.userID, taskID, title); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

func (b *Board) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	return b.apply(b.store.ToggleSubtask(ctx, b.userID, taskID, subtaskID))
}

func (b *Board) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return b.apply(b.store.DeleteSubtask(ctx, b.userID, taskID, subtaskID))
}

func (b *Board) DeleteTask(ctx context.Context, taskID string) error {
	return b.apply(b.store.DeleteTask(ctx, b.userID, taskID))
}

// ResolveTask принимает id задачи или её номер (с 1) в последнем отображённом списке
func (b *Board) ResolveTask(ref string) (todoclient.Task, error) {
	if b.list == nil {
		return todoclient.Task{}, fmt.Errorf("task list not loaded")
	}
	i, err := resolve(ref, len(b.list.Tasks), func(i int) string { return b.list.Tasks[i].ID })
	if err != nil {
		return todoclient.Task{}, fmt.Errorf("task %w", err)
	}
	return b.list.Tasks[i], nil
}

// ResolveSubtask ищет подзадачу по id или номеру внутри задачи
func (b *Board) ResolveSubtask(task todoclient.Task, ref string) (todoclient.Subtask, error) {
	i, err := resolve(ref, len(task.Subtasks), func(i int) string { return task.Subtasks[i].ID })
	if err != nil {
		return todoclient.Subtask{}, fmt.Errorf("subtask %w", err)
	}
	return task.Subtasks[i], nil
}

func resolve(ref string, n int, id func(int) string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, ErrRefRequired
	}
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 || num > n {
			return 0, fmt.Errorf("number out of range: %s", ref)
		}
		return num - 1, nil
	}
	for i := 0; i < n; i++ {
		if id(i) == ref {
			return i, nil
		}
	}
	return 0, fmt.Errorf("not found: %s", ref)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (b *Board) ensureLoaded(ctx context.Context) error {
	if b.list != nil {
		return nil
	}
	return b.Refresh(ctx)
}

func (b *Board) apply(list *todoclient.ToDoList, err error) error {
	if err != nil {
		return err
	}
	b.list = list
	return nil
}
