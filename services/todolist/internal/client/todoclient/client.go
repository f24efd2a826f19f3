package todoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/middleware"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/progress"
)

const (
	todoListPath = "/api/todolist"
	authPath     = "/api/auth"

	maxResponseBytes = 4 << 20
)

type Subtask struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CompletionStatus bool   `json:"completionStatus"`
}

type Task struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subtasks []Subtask `json:"subtasks"`
	Progress float64   `json:"progress"`
}

// ToDoList - список задач в том виде, в каком его вернул сервер
type ToDoList struct {
	UserID     string          `json:"userId"`
	Tasks      []Task          `json:"tasks"`
	TaskStatus progress.Counts `json:"taskStatus"`
}

// APIError - ответ сервера с кодом не 2xx
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// IsNotFound сообщает, что сервер ответил 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Структуры запросов

type subtaskPayload struct {
	ID               string `json:"id,omitempty"`
	Title            string `json:"title"`
	CompletionStatus bool   `json:"completionStatus"`
}

type taskPayload struct {
	ID       string           `json:"id,omitempty"`
	Title    string           `json:"title"`
	Subtasks []subtaskPayload `json:"subtasks"`
}

type replaceTasksPayload struct {
	Tasks []taskPayload `json:"tasks"`
}

type titlePayload struct {
	Title string `json:"title"`
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type mutationResponse struct {
	Message  string   `json:"message"`
	ToDoList ToDoList `json:"toDoList"`
}

type authResponse struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// GetToDoList читает список пользователя; сервер создаёт пустой при первом обращении
func (c *Client) GetToDoList(ctx context.Context, userID string) (*ToDoList, error) {
	var list ToDoList
	if err := c.do(ctx, http.MethodGet, listPath(userID), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ReplaceTasks полностью заменяет задачи пользователя
func (c *Client) ReplaceTasks(ctx context.Context, userID string, tasks []Task) (*ToDoList, error) {
	payload := replaceTasksPayload{Tasks: make([]taskPayload, 0, len(tasks))}
	for _, t := range tasks {
		subtasks := make([]subtaskPayload, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subtasks = append(subtasks, subtaskPayload(st))
		}
		payload.Tasks = append(payload.Tasks, taskPayload{ID: t.ID, Title: t.Title, Subtasks: subtasks})
	}
	return c.mutate(ctx, http.MethodPost, listPath(userID), payload)
}

func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) (*ToDoList, error) {
	return c.mutate(ctx, http.MethodDelete, listPath(userID, taskID), nil)
}

func (c *Client) AddSubtask(ctx context.Context, userID, taskID, title string) (*ToDoList, error) {
	return c.mutate(ctx, http.MethodPost, listPath(userID, taskID, "subtask"), titlePayload{Title: title})
}

func (c *Client) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*ToDoList, error) {
	return c.mutate(ctx, http.MethodPut, listPath(userID, taskID, subtaskID), nil)
}

func (c *Client) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) (*ToDoList, error) {
	return c.mutate(ctx, http.MethodDelete, listPath(userID, taskID, subtaskID), nil)
}

// Login обращается к внешнему сервису аутентификации и возвращает userId
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/login", credentialsPayload{username, password}, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("auth service returned no user id")
	}
	return resp.UserID, nil
}

// Register создаёт учётную запись и возвращает сообщение сервиса
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/register", credentialsPayload{username, password}, &resp); err != nil {
		return "", err
	}
	return firstNonEmpty(resp.Msg, resp.Message), nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (*ToDoList, error) {
	var resp mutationResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	c.logger.WithField("component", "todo_client").Debug(resp.Message)
	return &resp.ToDoList, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	// request-id из контекста или новый, чтобы связать логи клиента и сервера
	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	logEntry := c.logger.WithFields(logrus.Fields{
		"component":  "todo_client",
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logEntry.Debug("calling todolist server")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logEntry.Warn("server timeout")
			return fmt.Errorf("server timeout: %w", err)
		}
		logEntry.WithError(err).Error("server unavailable")
		return fmt.Errorf("server unavailable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload authResponse
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = firstNonEmpty(payload.Message, payload.Msg)
		}
		logEntry.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"message": apiErr.Message,
		}).Warn("server returned error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	logEntry.WithField("status", resp.StatusCode).Debug("server response received")
	return nil
}

// listPath собирает путь /api/todolist/{userId}/... с экранированием сегментов
func listPath(segments ...string) string {
	var b strings.Builder
	b.WriteString(todoListPath)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
