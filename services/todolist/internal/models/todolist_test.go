package models

import (
	"strings"
	"testing"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

func TestTaskProgress(t *testing.T) {
	tests := []struct {
		name       string
		subtasks   []Subtask
		wantPct    float64
		wantBucket progress.Bucket
	}{
		{
			name:       "no subtasks",
			wantPct:    0,
			wantBucket: progress.Ongoing,
		},
		{
			name:       "nothing completed",
			subtasks:   []Subtask{{Title: "a"}, {Title: "b"}},
			wantPct:    0,
			wantBucket: progress.Ongoing,
		},
		{
			name:       "one of two",
			subtasks:   []Subtask{{Title: "a"}, {Title: "b", CompletionStatus: true}},
			wantPct:    50,
			wantBucket: progress.InProcess,
		},
		{
			name:       "all completed",
			subtasks:   []Subtask{{Title: "a", CompletionStatus: true}},
			wantPct:    100,
			wantBucket: progress.Completed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Title: "x", Subtasks: tt.subtasks}
			if got := task.Progress(); got != tt.wantPct {
				t.Errorf("Progress() = %v, want %v", got, tt.wantPct)
			}
			if got := task.Bucket(); got != tt.wantBucket {
				t.Errorf("Bucket() = %q, want %q", got, tt.wantBucket)
			}
		})
	}
}

func TestToDoListStatus(t *testing.T) {
	l := &ToDoList{Tasks: []Task{
		{Title: "empty"},
		{Title: "partial", Subtasks: []Subtask{{CompletionStatus: true}, {}}},
		{Title: "done", Subtasks: []Subtask{{CompletionStatus: true}}},
	}}

	got := l.Status()
	want := progress.Counts{Ongoing: 1, InProcess: 1, Completed: 1}
	if got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}
	if got.Total() != len(l.Tasks) {
		t.Errorf("counts do not partition tasks: %d != %d", got.Total(), len(l.Tasks))
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &ToDoList{UserID: "u1", Tasks: []Task{
		{ID: "t_1", Title: "a", Subtasks: []Subtask{{ID: "s_1", Title: "b"}}},
	}}

	cp := orig.Clone()
	cp.Tasks[0].Subtasks[0].CompletionStatus = true
	cp.Tasks[0].Title = "changed"

	if orig.Tasks[0].Subtasks[0].CompletionStatus {
		t.Error("clone shares subtask storage with original")
	}
	if orig.Tasks[0].Title != "a" {
		t.Error("clone shares task storage with original")
	}
}

func TestNormalize(t *testing.T) {
	l := &ToDoList{Tasks: []Task{{Title: "a"}}}
	l.Normalize()
	if l.Tasks[0].Subtasks == nil {
		t.Error("expected empty subtasks slice after Normalize")
	}

	var empty ToDoList
	empty.Normalize()
	if empty.Tasks == nil {
		t.Error("expected empty tasks slice after Normalize")
	}
}

func TestIndexes(t *testing.T) {
	l := &ToDoList{Tasks: []Task{
		{ID: "t_1", Subtasks: []Subtask{{ID: "s_1"}, {ID: "s_2"}}},
		{ID: "t_2"},
	}}

	if i := l.TaskIndex("t_2"); i != 1 {
		t.Errorf("TaskIndex(t_2) = %d, want 1", i)
	}
	if i := l.TaskIndex("missing"); i != -1 {
		t.Errorf("TaskIndex(missing) = %d, want -1", i)
	}
	if i := l.Tasks[0].SubtaskIndex("s_2"); i != 1 {
		t.Errorf("SubtaskIndex(s_2) = %d, want 1", i)
	}
}

func TestNewIDs(t *testing.T) {
	if id := NewTaskID(); !strings.HasPrefix(id, TaskIDPrefix) {
		t.Errorf("task id %q lacks prefix", id)
	}
	if id := NewSubtaskID(); !strings.HasPrefix(id, SubtaskIDPrefix) {
		t.Errorf("subtask id %q lacks prefix", id)
	}
	if NewTaskID() == NewTaskID() {
		t.Error("expected unique task ids")
	}
}
