package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запрошенный ресурс отсутствует.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, команда недопустима в текущем состоянии попытки).
	ErrConflict = errors.New("resource state conflict")

	// ErrBadRequest используется для синтаксически некорректного ввода (битый JSON, неверный индекс).
	ErrBadRequest = errors.New("bad request")

	// ErrUnavailable используется, когда внешний источник данных недоступен.
	ErrUnavailable = errors.New("upstream unavailable")
)
