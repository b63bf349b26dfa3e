package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"calibrify/internal/controllers"
)

// apiEndpoints отдаётся в GET / как карта API.
var apiEndpoints = map[string]string{
	"equipment":           "/api/equipment",
	"due_for_calibration": "/api/equipment/due_for_calibration",
	"overdue_calibration": "/api/equipment/overdue_calibration",
	"equipment_export":    "/api/equipment/export",
	"equipment_import":    "/api/equipment/import",
	"calibration_records": "/api/calibration-records",
	"maintenance_records": "/api/maintenance-records",
	"dashboard":           "/api/dashboard",
	"health":              "/health",
	"metrics":             "/metrics",
}

func runSystemRouter(e *echo.Echo, checks map[string]controllers.HealthCheck, logger *zap.Logger) {
	ctrl := controllers.NewSystemController(checks, apiEndpoints, logger)

	e.GET("/", ctrl.Root)
	e.GET("/health", ctrl.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
