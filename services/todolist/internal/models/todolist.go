package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

// Префиксы идентификаторов, которые выдаёт хранилище
const (
	TaskIDPrefix    = "t_"
	SubtaskIDPrefix = "s_"
)

type Subtask struct {
	ID               string `json:"id" bson:"_id"`
	Title            string `json:"title" bson:"title"`
	CompletionStatus bool   `json:"completionStatus" bson:"completionStatus"`
}

type Task struct {
	ID       string    `json:"id" bson:"_id"`
	Title    string    `json:"title" bson:"title"`
	Subtasks []Subtask `json:"subtasks" bson:"subtasks"`
}

// ToDoList - агрегат: один документ на пользователя со всеми задачами
type ToDoList struct {
	UserID    string    `json:"userId" bson:"userId"`
	Tasks     []Task    `json:"tasks" bson:"tasks"`
	CreatedAt time.Time `json:"-" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`
}

func NewTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}

func NewSubtaskID() string {
	return SubtaskIDPrefix + uuid.NewString()
}

// NewToDoList создаёт пустой список задач пользователя
func NewToDoList(userID string) *ToDoList {
	now := time.Now().UTC()
	return &ToDoList{
		UserID:    userID,
		Tasks:     []Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CompletedCount - число выполненных подзадач
func (t Task) CompletedCount() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.CompletionStatus {
			n++
		}
	}
	return n
}

// Progress вычисляется при чтении и никогда не хранится
func (t Task) Progress() float64 {
	return progress.Percent(t.CompletedCount(), len(t.Subtasks))
}

func (t Task) Bucket() progress.Bucket {
	return progress.Classify(t.CompletedCount(), len(t.Subtasks))
}

// SubtaskIndex возвращает индекс подзадачи или -1
func (t Task) SubtaskIndex(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskIndex возвращает индекс задачи или -1
func (l *ToDoList) TaskIndex(id string) int {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Status - сводка ongoing/inProcess/completed по текущим задачам
func (l *ToDoList) Status() progress.Counts {
	var c progress.Counts
	for _, t := range l.Tasks {
		c.Add(t.CompletedCount(), len(t.Subtasks))
	}
	return c
}

// Normalize заменяет nil-срезы пустыми, чтобы в JSON были [] а не null
func (l *ToDoList) Normalize() {
	if l.Tasks == nil {
		l.Tasks = []Task{}
	}
	for i := range l.Tasks {
		if l.Tasks[i].Subtasks == nil {
			l.Tasks[i].Subtasks = []Subtask{}
		}
	}
}

// Clone - глубокая копия агрегата
func (l *ToDoList) Clone() *ToDoList {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Tasks = make([]Task, len(l.Tasks))
	for i, t := range l.Tasks {
		cp.Tasks[i] = t
		cp.Tasks[i].Subtasks = append([]Subtask{}, t.Subtasks...)
	}
	return &cp
}
