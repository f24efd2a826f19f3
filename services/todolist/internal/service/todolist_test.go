package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/repository"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

func newTestService() (*ToDoListService, *repository.MemoryToDoListRepository) {
	repo := repository.NewMemoryToDoListRepository()
	return NewToDoListService(repo, time.Second), repo
}

// seed создаёт список с одной задачей и заданными подзадачами
func seed(t *testing.T, s *ToDoListService, userID string, subtasks ...SubtaskInput) *models.ToDoList {
	t.Helper()
	list, err := s.ReplaceTasks(context.Background(), userID, []TaskInput{{Title: "Write report", Subtasks: subtasks}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return list
}

// getOrCreateConcurrently запускает readers одновременных GetOrCreate и, если extra != nil,
// ещё одну операцию в тот же момент
func getOrCreateConcurrently(t *testing.T, s *ToDoListService, userID string, readers int, extra func() error) []*models.ToDoList {
	t.Helper()
	ctx := context.Background()
	lists := make([]*models.ToDoList, readers)
	errs := make([]error, readers+1)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			lists[i], errs[i] = s.GetOrCreate(ctx, userID)
		}(i)
	}
	if extra != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[readers] = extra()
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	return lists
}

func TestGetOrCreate_ConcurrentFirstReads(t *testing.T) {
	s, repo := newTestService()

	lists := getOrCreateConcurrently(t, s, "u1", 32, nil)

	if repo.Count() != 1 {
		t.Fatalf("expected exactly one stored list, got %d", repo.Count())
	}
	// все читатели получили одну и ту же запись, а не свою свежесозданную
	created := lists[0].CreatedAt
	for i, l := range lists {
		if !l.CreatedAt.Equal(created) {
			t.Errorf("reader %d saw a different list (created %v, want %v)", i, l.CreatedAt, created)
		}
	}
}

func TestGetOrCreate_ConcurrentWithReplace(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	getOrCreateConcurrently(t, s, "u1", 32, func() error {
		_, err := s.ReplaceTasks(ctx, "u1", []TaskInput{{Title: "survives"}})
		return err
	})

	if repo.Count() != 1 {
		t.Fatalf("expected exactly one stored list, got %d", repo.Count())
	}
	// создание при первом чтении не затирает параллельную замену
	final, err := s.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(final.Tasks) != 1 || final.Tasks[0].Title != "survives" {
		t.Errorf("concurrent replace was lost: %+v", final.Tasks)
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := s.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.UserID != "u1" || len(first.Tasks) != 0 || len(second.Tasks) != 0 {
		t.Errorf("expected two empty lists for u1, got %+v and %+v", first, second)
	}
	if repo.Count() != 1 {
		t.Errorf("expected exactly one stored list, got %d", repo.Count())
	}
}

func TestGetOrCreate_RequiresUserID(t *testing.T) {
	s, _ := newTestService()
	_, err := s.GetOrCreate(context.Background(), "  ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceTasks_NewTaskScenario(t *testing.T) {
	s, _ := newTestService()

	list := seed(t, s, "u1")

	if len(list.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list.Tasks))
	}
	task := list.Tasks[0]
	if !strings.HasPrefix(task.ID, models.TaskIDPrefix) {
		t.Errorf("expected store-issued id, got %q", task.ID)
	}
	if task.Progress() != 0 {
		t.Errorf("expected progress 0, got %v", task.Progress())
	}
	if task.Bucket() != progress.Ongoing {
		t.Errorf("expected ongoing, got %s", task.Bucket())
	}
}

func TestReplaceTasks_IgnoresClientIDsOnCreate(t *testing.T) {
	s, _ := newTestService()

	list, err := s.ReplaceTasks(context.Background(), "u1", []TaskInput{
		{ID: "client-chosen", Title: "a", Subtasks: []SubtaskInput{{ID: "also-client", Title: "b"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if list.Tasks[0].ID == "client-chosen" {
		t.Error("client supplied task id was accepted")
	}
	if list.Tasks[0].Subtasks[0].ID == "also-client" {
		t.Error("client supplied subtask id was accepted")
	}
}

func TestReplaceTasks_KeepsExistingIDsAndOrder(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	list := seed(t, s, "u1", SubtaskInput{Title: "a"})
	existing := list.Tasks[0]

	// Клиент пересылает весь массив: старые задачи плюс новую
	next, err := s.ReplaceTasks(ctx, "u1", []TaskInput{
		{
			ID:    existing.ID,
			Title: "ignored rename",
			Subtasks: []SubtaskInput{
				{ID: existing.Subtasks[0].ID, Title: existing.Subtasks[0].Title, CompletionStatus: true},
			},
		},
		{Title: "Second"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(next.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(next.Tasks))
	}
	if next.Tasks[0].ID != existing.ID || next.Tasks[0].Title != "Write report" {
		t.Errorf("existing task changed: %+v", next.Tasks[0])
	}
	if next.Tasks[0].Subtasks[0].ID != existing.Subtasks[0].ID || !next.Tasks[0].Subtasks[0].CompletionStatus {
		t.Errorf("existing subtask not kept: %+v", next.Tasks[0].Subtasks[0])
	}
	if next.Tasks[1].Title != "Second" {
		t.Errorf("expected new task appended last, got %+v", next.Tasks[1])
	}
}

func TestReplaceTasks_DuplicateIDsAreReissued(t *testing.T) {
	s, _ := newTestService()
	list := seed(t, s, "u1")
	id := list.Tasks[0].ID

	next, err := s.ReplaceTasks(context.Background(), "u1", []TaskInput{
		{ID: id, Title: "x"},
		{ID: id, Title: "copy"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if next.Tasks[0].ID != id {
		t.Errorf("first occurrence should keep id")
	}
	if next.Tasks[1].ID == id {
		t.Errorf("duplicate id was not re-issued")
	}
}

func TestReplaceTasks_FullReplaceDropsOmittedTasks(t *testing.T) {
	s, _ := newTestService()
	seed(t, s, "u1", SubtaskInput{Title: "a"})

	next, err := s.ReplaceTasks(context.Background(), "u1", []TaskInput{{Title: "only"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Tasks) != 1 || next.Tasks[0].Title != "only" {
		t.Errorf("expected omitted tasks to be dropped, got %+v", next.Tasks)
	}
}

func TestReplaceTasks_NilKeepsExisting(t *testing.T) {
	s, _ := newTestService()
	seed(t, s, "u1")

	next, err := s.ReplaceTasks(context.Background(), "u1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Tasks) != 1 {
		t.Errorf("expected existing task kept, got %d tasks", len(next.Tasks))
	}

	cleared, err := s.ReplaceTasks(context.Background(), "u1", []TaskInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cleared.Tasks) != 0 {
		t.Errorf("expected empty array to clear tasks, got %d", len(cleared.Tasks))
	}
}

func TestReplaceTasks_Validation(t *testing.T) {
	s, repo := newTestService()

	_, err := s.ReplaceTasks(context.Background(), "u1", []TaskInput{{Title: "   "}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "tasks[0].title" {
		t.Errorf("unexpected field %q", verr.Field)
	}

	_, err = s.ReplaceTasks(context.Background(), "u1", []TaskInput{{Title: "ok", Subtasks: []SubtaskInput{{Title: ""}}}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty subtask title, got %v", err)
	}
	if repo.Count() != 0 {
		t.Error("invalid replace must not persist anything")
	}
}

func TestTitlesStoredAsGiven(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	const title = "Tom & Jerry's <notes>"
	list, err := s.ReplaceTasks(ctx, "u1", []TaskInput{{
		Title:    "  " + title + "  ",
		Subtasks: []SubtaskInput{{Title: title}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	taskID := list.Tasks[0].ID

	list, err = s.AddSubtask(ctx, "u1", taskID, "a < b")
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Tasks[0].Title != title {
		t.Errorf("task title changed: %q", got.Tasks[0].Title)
	}
	if got.Tasks[0].Subtasks[0].Title != title || got.Tasks[0].Subtasks[1].Title != "a < b" {
		t.Errorf("subtask titles changed: %+v", got.Tasks[0].Subtasks)
	}
}

func TestDeleteTask(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	list := seed(t, s, "u1", SubtaskInput{Title: "a"}, SubtaskInput{Title: "b"})
	taskID := list.Tasks[0].ID

	got, err := s.DeleteTask(ctx, "u1", taskID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 0 {
		t.Fatalf("expected task removed, got %+v", got.Tasks)
	}

	// Подзадачи удалённой задачи больше недоступны
	if _, err := s.AddSubtask(ctx, "u1", taskID, "c"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected task not found after cascade delete, got %v", err)
	}

	// Повторное удаление - no-op
	if _, err := s.DeleteTask(ctx, "u1", taskID); err != nil {
		t.Errorf("deleting absent task should be a no-op, got %v", err)
	}
}

func TestDeleteTask_ListNotFound(t *testing.T) {
	s, _ := newTestService()
	_, err := s.DeleteTask(context.Background(), "ghost", "t_1")
	if !errors.Is(err, ErrListNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected list not found, got %v", err)
	}
}

func TestAddSubtask(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	list := seed(t, s, "u1", SubtaskInput{Title: "a"})
	taskID := list.Tasks[0].ID

	got, err := s.AddSubtask(ctx, "u1", taskID, "  b  ")
	if err != nil {
		t.Fatal(err)
	}
	subs := got.Tasks[0].Subtasks
	if len(subs) != 2 || subs[1].Title != "b" || subs[1].CompletionStatus {
		t.Fatalf("unexpected subtasks %+v", subs)
	}
	if !strings.HasPrefix(subs[1].ID, models.SubtaskIDPrefix) || subs[1].ID == subs[0].ID {
		t.Errorf("expected fresh unique subtask id, got %q", subs[1].ID)
	}

	tests := []struct {
		name   string
		userID string
		taskID string
		title  string
		want   error
	}{
		{"empty title", "u1", taskID, " ", ErrValidation},
		{"missing list", "ghost", taskID, "x", ErrListNotFound},
		{"missing task", "u1", "t_missing", "x", ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddSubtask(ctx, tt.userID, tt.taskID, tt.title); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToggleSubtask_TwiceRestores(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	list := seed(t, s, "u1", SubtaskInput{Title: "a"}, SubtaskInput{Title: "b", CompletionStatus: true})
	task := list.Tasks[0]

	if task.Progress() != 50 || task.Bucket() != progress.InProcess {
		t.Fatalf("expected 50%% in process, got %v %s", task.Progress(), task.Bucket())
	}

	once, err := s.ToggleSubtask(ctx, "u1", task.ID, task.Subtasks[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if once.Tasks[0].Progress() != 100 || once.Tasks[0].Bucket() != progress.Completed {
		t.Errorf("expected completed after toggling last open subtask, got %v", once.Tasks[0].Progress())
	}
	if once.Status() != (progress.Counts{Completed: 1}) {
		t.Errorf("unexpected status %+v", once.Status())
	}

	twice, err := s.ToggleSubtask(ctx, "u1", task.ID, task.Subtasks[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if twice.Tasks[0].Subtasks[0].CompletionStatus != task.Subtasks[0].CompletionStatus {
		t.Error("double toggle did not restore status")
	}
	if twice.Tasks[0].Progress() != task.Progress() {
		t.Error("double toggle did not restore progress")
	}
}

func TestToggleSubtask_NotFound(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	list := seed(t, s, "u1", SubtaskInput{Title: "a"})
	taskID := list.Tasks[0].ID

	if _, err := s.ToggleSubtask(ctx, "ghost", taskID, "s_1"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("expected list not found, got %v", err)
	}
	if _, err := s.ToggleSubtask(ctx, "u1", "t_missing", "s_1"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected task not found, got %v", err)
	}
	if _, err := s.ToggleSubtask(ctx, "u1", taskID, "s_missing"); !errors.Is(err, ErrSubtaskNotFound) {
		t.Errorf("expected subtask not found, got %v", err)
	}
}

func TestDeleteSubtask_OnlySubtaskReturnsToOngoing(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	list := seed(t, s, "u1", SubtaskInput{Title: "a", CompletionStatus: true})
	task := list.Tasks[0]

	got, err := s.DeleteSubtask(ctx, "u1", task.ID, task.Subtasks[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks[0].Subtasks) != 0 {
		t.Fatalf("expected no subtasks, got %+v", got.Tasks[0].Subtasks)
	}
	if got.Tasks[0].Progress() != 0 || got.Tasks[0].Bucket() != progress.Ongoing {
		t.Errorf("expected ongoing with progress 0")
	}

	// Отсутствующая подзадача - no-op
	if _, err := s.DeleteSubtask(ctx, "u1", task.ID, "s_missing"); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}
	if _, err := s.DeleteSubtask(ctx, "u1", "t_missing", "s_missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected task not found, got %v", err)
	}
}

// fakeRepository - мок хранилища с подменяемыми функциями
type fakeRepository struct {
	repository.ToDoListRepository
	FindFunc func(ctx context.Context, userID string) (*models.ToDoList, error)
	SaveFunc func(ctx context.Context, list *models.ToDoList) error
}

func (f *fakeRepository) FindByUserID(ctx context.Context, userID string) (*models.ToDoList, error) {
	return f.FindFunc(ctx, userID)
}

func (f *fakeRepository) Save(ctx context.Context, list *models.ToDoList) error {
	return f.SaveFunc(ctx, list)
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	errDown := errors.New("db down")
	s := NewToDoListService(&fakeRepository{
		FindFunc: func(ctx context.Context, userID string) (*models.ToDoList, error) {
			list := models.NewToDoList(userID)
			list.Tasks = []models.Task{{ID: "t_1", Title: "a", Subtasks: []models.Subtask{{ID: "s_1", Title: "b"}}}}
			return list, nil
		},
		SaveFunc: func(ctx context.Context, list *models.ToDoList) error { return errDown },
	}, time.Second)

	_, err := s.ToggleSubtask(context.Background(), "u1", "t_1", "s_1")
	if !errors.Is(err, errDown) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		t.Error("storage failure must not look client-correctable")
	}
}

func TestTimeoutIsApplied(t *testing.T) {
	s := NewToDoListService(&fakeRepository{
		FindFunc: func(ctx context.Context, userID string) (*models.ToDoList, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected deadline on store context")
			}
			return nil, nil
		},
	}, 50*time.Millisecond)

	if _, err := s.DeleteTask(context.Background(), "u1", "t_1"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("expected list not found, got %v", err)
	}
}
