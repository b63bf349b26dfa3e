package controllers

import (
	"net/http"

	"calibrify/internal/dto"
	"calibrify/internal/services"
	"calibrify/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type MaintenanceRecordController struct {
	service services.MaintenanceRecordServiceInterface
	logger  *zap.Logger
}

func NewMaintenanceRecordController(service services.MaintenanceRecordServiceInterface, logger *zap.Logger) *MaintenanceRecordController {
	return &MaintenanceRecordController{service: service, logger: logger}
}

func (c *MaintenanceRecordController) GetMaintenanceRecords(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.service.GetMaintenanceRecords(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список записей об обслуживании успешно получен", http.StatusOK, total)
}

func (c *MaintenanceRecordController) FindMaintenanceRecord(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.FindMaintenanceRecord(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись об обслуживании успешно найдена", http.StatusOK)
}

func (c *MaintenanceRecordController) CreateMaintenanceRecord(ctx echo.Context) error {
	var createDTO dto.CreateMaintenanceRecordDTO
	if err := ctx.Bind(&createDTO); err != nil {
		c.logger.Warn("CreateMaintenanceRecord: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&createDTO); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.CreateMaintenanceRecord(ctx.Request().Context(), createDTO)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись об обслуживании успешно создана", http.StatusCreated)
}

func (c *MaintenanceRecordController) DeleteMaintenanceRecord(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.service.DeleteMaintenanceRecord(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, struct{}{}, "Запись об обслуживании успешно удалена", http.StatusOK)
}
