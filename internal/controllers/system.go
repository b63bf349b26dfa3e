package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	APIName    = "Calibrify API"
	APIVersion = "1.0.0"

	healthTimeout = 3 * time.Second
)

// HealthCheck проверяет одну зависимость (база, Redis).
type HealthCheck func(ctx context.Context) error

type SystemController struct {
	checks    map[string]HealthCheck
	endpoints map[string]string
	logger    *zap.Logger
}

func NewSystemController(checks map[string]HealthCheck, endpoints map[string]string, logger *zap.Logger) *SystemController {
	return &SystemController{checks: checks, endpoints: endpoints, logger: logger}
}

// Root - GET /, описание API.
func (c *SystemController) Root(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, map[string]interface{}{
		"name":      APIName,
		"version":   APIVersion,
		"endpoints": c.endpoints,
	}, "Calibrify API", http.StatusOK)
}

// Health - GET /health. 503, если хоть одна проверка не прошла.
func (c *SystemController) Health(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make(map[string]interface{}, len(names))
	healthy := true
	for _, name := range names {
		if err := c.checks[name](reqCtx); err != nil {
			c.logger.Error("Health: проверка не пройдена", zap.String("component", name), zap.Error(err))
			components[name] = "unavailable"
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	if !healthy {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusServiceUnavailable, "Сервис недоступен", nil, components),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, components, "ok", http.StatusOK)
}
