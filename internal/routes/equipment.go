package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/controllers"
	"calibrify/internal/services"
)

func runEquipmentRouter(
	api *echo.Group,
	equipmentService services.EquipmentServiceInterface,
	reportService services.ReportServiceInterface,
	importService services.EquipmentImportServiceInterface,
	logger *zap.Logger,
) {
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)
	reportCtrl := controllers.NewReportController(reportService, importService, logger)

	api.GET("/equipment", equipmentCtrl.GetEquipment)
	api.GET("/equipment/due_for_calibration", equipmentCtrl.DueForCalibration)
	api.GET("/equipment/overdue_calibration", equipmentCtrl.OverdueCalibration)
	api.GET("/equipment/export", reportCtrl.ExportEquipment)
	api.POST("/equipment/import", reportCtrl.ImportEquipment)
	api.GET("/equipment/:id", equipmentCtrl.FindEquipment)
	api.POST("/equipment", equipmentCtrl.CreateEquipment)
	api.PUT("/equipment/:id", equipmentCtrl.UpdateEquipment)
	api.PATCH("/equipment/:id", equipmentCtrl.UpdateEquipment)
	api.DELETE("/equipment/:id", equipmentCtrl.DeleteEquipment)
}
