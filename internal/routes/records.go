package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/controllers"
	"calibrify/internal/services"
)

func runCalibrationRecordRouter(api *echo.Group, service services.CalibrationRecordServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewCalibrationRecordController(service, logger)

	api.GET("/calibration-records", ctrl.GetCalibrationRecords)
	api.GET("/calibration-records/:id", ctrl.FindCalibrationRecord)
	api.GET("/calibration-records/:id/certificate", ctrl.DownloadCertificate)
	api.POST("/calibration-records", ctrl.CreateCalibrationRecord)
	api.DELETE("/calibration-records/:id", ctrl.DeleteCalibrationRecord)
}

func runMaintenanceRecordRouter(api *echo.Group, service services.MaintenanceRecordServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewMaintenanceRecordController(service, logger)

	api.GET("/maintenance-records", ctrl.GetMaintenanceRecords)
	api.GET("/maintenance-records/:id", ctrl.FindMaintenanceRecord)
	api.POST("/maintenance-records", ctrl.CreateMaintenanceRecord)
	api.DELETE("/maintenance-records/:id", ctrl.DeleteMaintenanceRecord)
}

func runDashboardRouter(api *echo.Group, service services.DashboardServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewDashboardController(service, logger)

	api.GET("/dashboard", ctrl.GetDashboardStats)
}
