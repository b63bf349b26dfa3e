package repositories

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		code   int
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "equipment_serial_number_key"}, apperrors.ErrConflict, http.StatusConflict},
		{"check violation", &pgconn.PgError{Code: pgCheckViolation}, apperrors.ErrValidation, http.StatusBadRequest},
		{"numeric out of range", &pgconn.PgError{Code: pgNumericOutOfRange, Message: "numeric field overflow"}, apperrors.ErrValidation, http.StatusBadRequest},
		{"bigint filter with text", &pgconn.PgError{Code: pgInvalidTextRepr, Message: `invalid input syntax for type bigint: "abc"`}, apperrors.ErrValidation, http.StatusBadRequest},
		{"other driver error", errors.New("conn closed"), nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapPgError(tt.err, "test op")
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			_ = utils.ErrorResponse(c, err, zap.NewNop())
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
