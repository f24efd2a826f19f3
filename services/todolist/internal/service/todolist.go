package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/repository"
)

// TaskInput - задача в запросе полной замены списка
type TaskInput struct {
	ID       string
	Title    string
	Subtasks []SubtaskInput
}

type SubtaskInput struct {
	ID               string
	Title            string
	CompletionStatus bool
}

// ToDoListService реализует операции над агрегатом ToDoList.
// Каждая операция - отдельный read-modify-write без версий и блокировок,
// поэтому при гонке двух запросов побеждает последняя запись.
type ToDoListService struct {
	repo    repository.ToDoListRepository
	timeout time.Duration
	now     func() time.Time
}

func NewToDoListService(repo repository.ToDoListRepository, timeout time.Duration) *ToDoListService {
	return &ToDoListService{
		repo:    repo,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ToDoListService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// GetOrCreate возвращает список пользователя, создавая пустой при первом чтении
func (s *ToDoListService) GetOrCreate(ctx context.Context, userID string) (*models.ToDoList, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, required("userId")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find todolist: %w", err)
	}
	if list != nil {
		return list, nil
	}

	list, err = s.repo.CreateIfAbsent(ctx, models.NewToDoList(userID))
	if err != nil {
		return nil, fmt.Errorf("create todolist: %w", err)
	}
	return list, nil
}

// ReplaceTasks целиком перезаписывает задачи пользователя.
// Задачи, которых нет во входе, удаляются. tasks == nil оставляет текущие задачи.
func (s *ToDoListService) ReplaceTasks(ctx context.Context, userID string, tasks []TaskInput) (*models.ToDoList, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, required("userId")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find todolist: %w", err)
	}

	list := existing
	if list == nil {
		list = models.NewToDoList(userID)
	}
	if tasks != nil {
		replaced, err := buildTasks(existing, tasks)
		if err != nil {
			return nil, err
		}
		list.Tasks = replaced
	}

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// buildTasks собирает новый массив задач. Идентификаторы выдаёт только хранилище:
// известный id сохраняется вместе с исходным заголовком, остальные элементы
// получают новый id. Повтор id во входе считается новым элементом.
func buildTasks(existing *models.ToDoList, input []TaskInput) ([]models.Task, error) {
	known := make(map[string]models.Task)
	if existing != nil {
		for _, t := range existing.Tasks {
			known[t.ID] = t
		}
	}

	seen := make(map[string]bool, len(input))
	tasks := make([]models.Task, 0, len(input))
	for i, in := range input {
		var task models.Task
		if prev, ok := known[in.ID]; ok && !seen[in.ID] {
			seen[in.ID] = true
			task = models.Task{ID: prev.ID, Title: prev.Title}
		} else {
			title := strings.TrimSpace(in.Title)
			if title == "" {
				return nil, required(fmt.Sprintf("tasks[%d].title", i))
			}
			task = models.Task{ID: models.NewTaskID(), Title: title}
		}

		subtasks, err := buildSubtasks(known[task.ID], in.Subtasks, i)
		if err != nil {
			return nil, err
		}
		task.Subtasks = subtasks
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func buildSubtasks(parent models.Task, input []SubtaskInput, taskIdx int) ([]models.Subtask, error) {
	known := make(map[string]string, len(parent.Subtasks))
	for _, st := range parent.Subtasks {
		known[st.ID] = st.Title
	}

	seen := make(map[string]bool, len(input))
	subtasks := make([]models.Subtask, 0, len(input))
	for j, in := range input {
		st := models.Subtask{CompletionStatus: in.CompletionStatus}
		if title, ok := known[in.ID]; ok && !seen[in.ID] {
			seen[in.ID] = true
			st.ID, st.Title = in.ID, title
		} else {
			title := strings.TrimSpace(in.Title)
			if title == "" {
				return nil, required(fmt.Sprintf("tasks[%d].subtasks[%d].title", taskIdx, j))
			}
			st.ID, st.Title = models.NewSubtaskID(), title
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, nil
}

// DeleteTask удаляет задачу вместе с подзадачами; отсутствующий id - не ошибка
func (s *ToDoListService) DeleteTask(ctx context.Context, userID, taskID string) (*models.ToDoList, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := list.TaskIndex(taskID)
	if idx < 0 {
		return list, nil
	}
	list.Tasks = append(list.Tasks[:idx], list.Tasks[idx+1:]...)

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddSubtask добавляет невыполненную подзадачу в конец списка подзадач
func (s *ToDoListService) AddSubtask(ctx context.Context, userID, taskID, title string) (*models.ToDoList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, required("title")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, task, err := s.loadTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Subtasks = append(task.Subtasks, models.Subtask{
		ID:               models.NewSubtaskID(),
		Title:            title,
		CompletionStatus: false,
	})

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleSubtask инвертирует completionStatus подзадачи
func (s *ToDoListService) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*models.ToDoList, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, task, err := s.loadTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	idx := task.SubtaskIndex(subtaskID)
	if idx < 0 {
		return nil, ErrSubtaskNotFound
	}
	task.Subtasks[idx].CompletionStatus = !task.Subtasks[idx].CompletionStatus

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteSubtask удаляет подзадачу; отсутствующий id - не ошибка
func (s *ToDoListService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) (*models.ToDoList, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, task, err := s.loadTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	idx := task.SubtaskIndex(subtaskID)
	if idx < 0 {
		return list, nil
	}
	task.Subtasks = append(task.Subtasks[:idx], task.Subtasks[idx+1:]...)

	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Ping проверяет доступность хранилища
func (s *ToDoListService) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Ping(ctx)
}

// load читает существующий список; мутации не создают его неявно
func (s *ToDoListService) load(ctx context.Context, userID string) (*models.ToDoList, error) {
	list, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find todolist: %w", err)
	}
	if list == nil {
		return nil, ErrListNotFound
	}
	return list, nil
}

func (s *ToDoListService) loadTask(ctx context.Context, userID, taskID string) (*models.ToDoList, *models.Task, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	idx := list.TaskIndex(taskID)
	if idx < 0 {
		return nil, nil, ErrTaskNotFound
	}
	return list, &list.Tasks[idx], nil
}

func (s *ToDoListService) save(ctx context.Context, list *models.ToDoList) error {
	list.UpdatedAt = s.now()
	list.Normalize()
	if err := s.repo.Save(ctx, list); err != nil {
		return fmt.Errorf("save todolist: %w", err)
	}
	return nil
}
