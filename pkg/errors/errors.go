package errors

import (
	"errors"
	"fmt"
)

var (
	// Общие
	ErrNotFound   = errors.New("запись не найдена")
	ErrBadRequest = errors.New("неверный запрос")
	ErrConflict   = errors.New("запись с такими данными уже существует")

	// Валидация
	ErrValidation = errors.New("ошибка валидации")
)

// HttpError - ошибка, которую контроллер отдаёт клиенту как есть.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrValidation }

func NewInvalidInputError(field, format string, args ...interface{}) error {
	return &InvalidInputError{Field: field, Message: fmt.Sprintf(format, args...)}
}
