package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
)

var (
	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_store_operations_total",
			Help: "Total number of todolist store operations",
		},
		[]string{"operation", "result"},
	)

	storeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todolist_store_operation_duration_seconds",
			Help:    "Duration of todolist store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Instrumented оборачивает хранилище метриками prometheus
type Instrumented struct {
	next ToDoListRepository
}

func NewInstrumented(next ToDoListRepository) *Instrumented {
	return &Instrumented{next: next}
}

func observe(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(operation, result).Inc()
	storeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) FindByUserID(ctx context.Context, userID string) (list *models.ToDoList, err error) {
	defer func(start time.Time) { observe("find", start, err) }(time.Now())
	return i.next.FindByUserID(ctx, userID)
}

func (i *Instrumented) CreateIfAbsent(ctx context.Context, list *models.ToDoList) (stored *models.ToDoList, err error) {
	defer func(start time.Time) { observe("create", start, err) }(time.Now())
	return i.next.CreateIfAbsent(ctx, list)
}

func (i *Instrumented) Save(ctx context.Context, list *models.ToDoList) (err error) {
	defer func(start time.Time) { observe("save", start, err) }(time.Now())
	return i.next.Save(ctx, list)
}

func (i *Instrumented) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { observe("ping", start, err) }(time.Now())
	return i.next.Ping(ctx)
}

func (i *Instrumented) Close() error {
	return i.next.Close()
}
