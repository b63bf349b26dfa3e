package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHttpError_UnwrapsCause(t *testing.T) {
	httpErr := NewHttpError(http.StatusNotFound, "Оборудование не найдено", ErrNotFound, nil)
	wrapped := fmt.Errorf("controller: %w", httpErr)

	var target *HttpError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, http.StatusNotFound, target.Code)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestInvalidInputError_IsValidation(t *testing.T) {
	err := NewInvalidInputError("calibration_interval_value", "ожидалось число, получено %q", "abc")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "calibration_interval_value")
}
