package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"calibrify/internal/calibration"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

const (
	DefaultLimit = 200
	MaxLimit     = 500
)

func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
		}
	} else {
		filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	}

	// Лимит действует всегда, кроме явного withPagination=false
	filterReq.WithPagination = values.Get("withPagination") != "false"

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = vals[0]
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			filterReq.Filter[field] = strings.Join(vals, ",")
		}
	}

	return filterReq
}

// SuccessResponse оборачивает ответ. Если клиент попросил withPagination=true
// и передан total, тело превращается в {list, pagination}.
func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message}
	withPagination, _ := strconv.ParseBool(ctx.QueryParam("withPagination"))
	if withPagination && len(total) > 0 {
		filter := ParseFilterFromQuery(ctx.Request().URL.Query())
		totalPages := 0
		if filter.Limit > 0 {
			totalPages = int((total[0] + uint64(filter.Limit) - 1) / uint64(filter.Limit))
		}
		response.Body = map[string]interface{}{
			"list": body,
			"pagination": types.Pagination{
				TotalCount: total[0],
				Page:       filter.Page,
				Limit:      filter.Limit,
				TotalPages: totalPages,
			},
		}
	} else {
		response.Body = body
	}
	return ctx.JSON(code, response)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Warn("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}
		// Ошибка внутри HttpError может быть точнее, чем код контроллера
		if httpErr.Code >= http.StatusInternalServerError || httpErr.Err == nil {
			return writeError(c, httpErr.Code, httpErr.Message, httpErr.Details)
		}
		if code, msg, ok := classify(httpErr.Err); ok && code != http.StatusBadRequest {
			return writeError(c, code, msg, httpErr.Details)
		}
		if details := validationDetails(httpErr.Err); details != nil {
			return writeError(c, http.StatusBadRequest, "Ошибка валидации", details)
		}
		return writeError(c, httpErr.Code, httpErr.Message, httpErr.Details)
	}

	if details := validationDetails(err); details != nil {
		return writeError(c, http.StatusBadRequest, "Ошибка валидации", details)
	}

	if code, msg, ok := classify(err); ok {
		return writeError(c, code, msg, nil)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return writeError(c, echoErr.Code, fmt.Sprint(echoErr.Message), nil)
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return writeError(c, http.StatusInternalServerError, "Внутренняя ошибка сервера", nil)
}

// classify сопоставляет ошибки приложения с HTTP-кодами.
func classify(err error) (int, string, bool) {
	var inputErr *apperrors.InvalidInputError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Запись не найдена", true
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "Запись с такими данными уже существует", true
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Error(), true
	case errors.Is(err, calibration.ErrInvalidIntervalUnit),
		errors.Is(err, calibration.ErrInvalidIntervalValue),
		errors.Is(err, calibration.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}

func validationDetails(err error) map[string]interface{} {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]interface{}, len(validationErrors))
	for _, e := range validationErrors {
		details[e.Field()] = fmt.Sprintf("поле не прошло проверку '%s'", e.Tag())
	}
	return details
}

func writeError(c echo.Context, code int, message string, details map[string]interface{}) error {
	response := &HTTPResponse{Status: false, Message: message}
	if details != nil {
		response.Body = details
	}
	return c.JSON(code, response)
}
