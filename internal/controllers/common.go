package controllers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "calibrify/pkg/errors"

	"github.com/labstack/echo/v4"
)

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID в URL", apperrors.ErrBadRequest, map[string]interface{}{"id": ctx.Param("id")})
	}
	return id, nil
}

// bindError превращает ошибку Bind в 400. Ошибка приведения типа
// (например calibration_interval_value: "abc") отдаётся клиенту с текстом.
func bindError(err error) error {
	var inputErr *apperrors.InvalidInputError
	if errors.As(err, &inputErr) {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные в теле запроса: "+inputErr.Error(), apperrors.ErrBadRequest, nil)
	}
	return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные в теле запроса", err, nil)
}
