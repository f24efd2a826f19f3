package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/service"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/middleware"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 1 << 20

type ToDoListHandler struct {
	service *service.ToDoListService
	logger  *logrus.Logger
}

func NewToDoListHandler(s *service.ToDoListService, logger *logrus.Logger) *ToDoListHandler {
	return &ToDoListHandler{
		service: s,
		logger:  logger,
	}
}

// Register регистрирует маршруты под префиксом, например /todolist
func (h *ToDoListHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/{userId}", h.GetToDoList)
	mux.HandleFunc("POST "+prefix+"/{userId}", h.ReplaceTasks)
	mux.HandleFunc("DELETE "+prefix+"/{userId}/{taskId}", h.DeleteTask)
	mux.HandleFunc("POST "+prefix+"/{userId}/{taskId}/subtask", h.AddSubtask)
	mux.HandleFunc("PUT "+prefix+"/{userId}/{taskId}/{subtaskId}", h.ToggleSubtask)
	mux.HandleFunc("DELETE "+prefix+"/{userId}/{taskId}/{subtaskId}", h.DeleteSubtask)
}

// Структуры запросов/ответов

type subtaskRequest struct {
	ID               string `json:"id"`
	LegacyID         string `json:"_id"`
	Title            string `json:"title"`
	CompletionStatus bool   `json:"completionStatus"`
}

type taskRequest struct {
	ID       string           `json:"id"`
	LegacyID string           `json:"_id"`
	Title    string           `json:"title"`
	Subtasks []subtaskRequest `json:"subtasks"`
}

// replaceTasksRequest: отсутствующее поле tasks оставляет задачи как есть
type replaceTasksRequest struct {
	Tasks *[]taskRequest `json:"tasks"`
}

type addSubtaskRequest struct {
	Title string `json:"title"`
}

type subtaskResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CompletionStatus bool   `json:"completionStatus"`
}

type taskResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Subtasks []subtaskResponse `json:"subtasks"`
	Progress float64           `json:"progress"`
}

type toDoListResponse struct {
	UserID     string          `json:"userId"`
	Tasks      []taskResponse  `json:"tasks"`
	TaskStatus progress.Counts `json:"taskStatus"`
}

type mutationResponse struct {
	Message  string           `json:"message"`
	ToDoList toDoListResponse `json:"toDoList"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (r replaceTasksRequest) toInput() []service.TaskInput {
	if r.Tasks == nil {
		return nil
	}
	input := make([]service.TaskInput, 0, len(*r.Tasks))
	for _, t := range *r.Tasks {
		subtasks := make([]service.SubtaskInput, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subtasks = append(subtasks, service.SubtaskInput{
				ID:               firstNonEmpty(st.ID, st.LegacyID),
				Title:            st.Title,
				CompletionStatus: st.CompletionStatus,
			})
		}
		input = append(input, service.TaskInput{
			ID:       firstNonEmpty(t.ID, t.LegacyID),
			Title:    t.Title,
			Subtasks: subtasks,
		})
	}
	return input
}

// toToDoListResponse добавляет производные поля: progress и taskStatus
func toToDoListResponse(l *models.ToDoList) toDoListResponse {
	tasks := make([]taskResponse, len(l.Tasks))
	for i, t := range l.Tasks {
		subtasks := make([]subtaskResponse, len(t.Subtasks))
		for j, st := range t.Subtasks {
			subtasks[j] = subtaskResponse{ID: st.ID, Title: st.Title, CompletionStatus: st.CompletionStatus}
		}
		tasks[i] = taskResponse{
			ID:       t.ID,
			Title:    t.Title,
			Subtasks: subtasks,
			Progress: t.Progress(),
		}
	}
	return toDoListResponse{
		UserID:     l.UserID,
		Tasks:      tasks,
		TaskStatus: l.Status(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func (h *ToDoListHandler) entry(r *http.Request, handler string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"component":  "http_handler",
		"handler":    handler,
		"request_id": middleware.GetRequestID(r.Context()),
		"user_id":    r.PathValue("userId"),
	})
}

// writeServiceError переводит ошибки сервиса в HTTP-ответ.
// NotFound и ValidationError исправимы клиентом, остальное - сбой хранилища.
func (h *ToDoListHandler) writeServiceError(w http.ResponseWriter, logEntry *logrus.Entry, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrListNotFound):
		logEntry.Warn("todo list not found")
		writeError(w, http.StatusNotFound, "ToDo list not found")
	case errors.Is(err, service.ErrTaskNotFound):
		logEntry.Warn("task not found")
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrSubtaskNotFound):
		logEntry.Warn("subtask not found")
		writeError(w, http.StatusNotFound, "Subtask not found")
	case errors.As(err, &verr):
		logEntry.WithField("field", verr.Field).Warn("validation failed")
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		logEntry.WithError(err).Error("store operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// GetToDoList обрабатывает GET /todolist/{userId}
func (h *ToDoListHandler) GetToDoList(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "GetToDoList")

	list, err := h.service.GetOrCreate(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.WithField("tasks", len(list.Tasks)).Debug("todo list retrieved")
	writeJSON(w, http.StatusOK, toToDoListResponse(list))
}

// ReplaceTasks обрабатывает POST /todolist/{userId}
func (h *ToDoListHandler) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "ReplaceTasks")

	// пустое тело равносильно отсутствию поля tasks
	var req replaceTasksRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := h.service.ReplaceTasks(r.Context(), r.PathValue("userId"), req.toInput())
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.WithField("tasks", len(list.Tasks)).Info("todo list saved")
	writeJSON(w, http.StatusOK, mutationResponse{
		Message:  "ToDo list saved successfully",
		ToDoList: toToDoListResponse(list),
	})
}

// DeleteTask обрабатывает DELETE /todolist/{userId}/{taskId}
func (h *ToDoListHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskId")
	logEntry := h.entry(r, "DeleteTask").WithField("task_id", taskID)

	list, err := h.service.DeleteTask(r.Context(), r.PathValue("userId"), taskID)
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.Info("task deleted")
	writeJSON(w, http.StatusOK, mutationResponse{
		Message:  "Task deleted successfully",
		ToDoList: toToDoListResponse(list),
	})
}

// AddSubtask обрабатывает POST /todolist/{userId}/{taskId}/subtask
func (h *ToDoListHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskId")
	logEntry := h.entry(r, "AddSubtask").WithField("task_id", taskID)

	var req addSubtaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := h.service.AddSubtask(r.Context(), r.PathValue("userId"), taskID, req.Title)
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.Info("subtask added")
	writeJSON(w, http.StatusOK, mutationResponse{
		Message:  "Subtask added",
		ToDoList: toToDoListResponse(list),
	})
}

// ToggleSubtask обрабатывает PUT /todolist/{userId}/{taskId}/{subtaskId}
func (h *ToDoListHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	taskID, subtaskID := r.PathValue("taskId"), r.PathValue("subtaskId")
	logEntry := h.entry(r, "ToggleSubtask").WithFields(logrus.Fields{
		"task_id":    taskID,
		"subtask_id": subtaskID,
	})

	list, err := h.service.ToggleSubtask(r.Context(), r.PathValue("userId"), taskID, subtaskID)
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.Info("subtask completion updated")
	writeJSON(w, http.StatusOK, mutationResponse{
		Message:  "Subtask completion updated",
		ToDoList: toToDoListResponse(list),
	})
}

// DeleteSubtask обрабатывает DELETE /todolist/{userId}/{taskId}/{subtaskId}
func (h *ToDoListHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	taskID, subtaskID := r.PathValue("taskId"), r.PathValue("subtaskId")
	logEntry := h.entry(r, "DeleteSubtask").WithFields(logrus.Fields{
		"task_id":    taskID,
		"subtask_id": subtaskID,
	})

	list, err := h.service.DeleteSubtask(r.Context(), r.PathValue("userId"), taskID, subtaskID)
	if err != nil {
		h.writeServiceError(w, logEntry, err)
		return
	}

	logEntry.Info("subtask deleted")
	writeJSON(w, http.StatusOK, mutationResponse{
		Message:  "Subtask deleted",
		ToDoList: toToDoListResponse(list),
	})
}

// Health обрабатывает GET /healthz
func (h *ToDoListHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.entry(r, "Health").WithError(err).Warn("store unavailable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
