package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - общий признак отсутствующего списка, задачи или подзадачи
	ErrNotFound = errors.New("not found")
	// ErrValidation - некорректный ввод клиента
	ErrValidation = errors.New("validation failed")

	ErrListNotFound    = fmt.Errorf("todo list %w", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrSubtaskNotFound = fmt.Errorf("subtask %w", ErrNotFound)
)

// ValidationError описывает поле, не прошедшее проверку
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func required(field string) error {
	return &ValidationError{Field: field, Msg: "is required"}
}
