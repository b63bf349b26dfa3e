package controllers

import (
	"net/http"

	"calibrify/internal/dto"
	"calibrify/internal/services"
	"calibrify/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(
	service services.EquipmentServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService: service,
		logger:           logger,
	}
}

// GetEquipment - GET /api/equipment
func (c *EquipmentController) GetEquipment(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.equipmentService.GetEquipment(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список оборудования успешно получен", http.StatusOK, total)
}

// FindEquipment - GET /api/equipment/:id, вместе с историей калибровок и обслуживания.
func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.FindEquipment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var createDTO dto.CreateEquipmentDTO
	if err := ctx.Bind(&createDTO); err != nil {
		c.logger.Warn("CreateEquipment: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&createDTO); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.CreateEquipment(ctx.Request().Context(), createDTO)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var updateDTO dto.UpdateEquipmentDTO
	if err := ctx.Bind(&updateDTO); err != nil {
		c.logger.Warn("UpdateEquipment: ошибка привязки данных", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&updateDTO); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.UpdateEquipment(ctx.Request().Context(), id, updateDTO)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.equipmentService.DeleteEquipment(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, struct{}{}, "Оборудование успешно удалено", http.StatusOK)
}

// DueForCalibration - GET /api/equipment/due_for_calibration
func (c *EquipmentController) DueForCalibration(ctx echo.Context) error {
	res, err := c.equipmentService.GetDueForCalibration(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование, требующее калибровки", http.StatusOK)
}

// OverdueCalibration - GET /api/equipment/overdue_calibration
func (c *EquipmentController) OverdueCalibration(ctx echo.Context) error {
	res, err := c.equipmentService.GetOverdueCalibration(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование с просроченной калибровкой", http.StatusOK)
}
