package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"calibrify/internal/services"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"
	"calibrify/pkg/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	importUploadContext = "equipment_import"
)

// ReportController выгружает и загружает реестр оборудования в xlsx.
type ReportController struct {
	reportService services.ReportServiceInterface
	importService services.EquipmentImportServiceInterface
	logger        *zap.Logger
	now           func() time.Time
}

func NewReportController(
	reportService services.ReportServiceInterface,
	importService services.EquipmentImportServiceInterface,
	logger *zap.Logger,
) *ReportController {
	return &ReportController{
		reportService: reportService,
		importService: importService,
		logger:        logger,
		now:           time.Now,
	}
}

// ExportEquipment - GET /api/equipment/export, те же фильтры, что и у списка.
func (c *ReportController) ExportEquipment(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter.WithPagination = false

	// Книгу собираем целиком до заголовков, чтобы ошибка ушла обычным JSON
	var buf bytes.Buffer
	if err := c.reportService.WriteEquipmentWorkbook(ctx.Request().Context(), filter, &buf); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileName := fmt.Sprintf("equipment_%s.xlsx", c.now().Format("2006-01-02"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportEquipment - POST /api/equipment/import, multipart с полем file.
func (c *ReportController) ImportEquipment(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil),
			c.logger,
		)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, importUploadContext); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.importService.Import(ctx.Request().Context(), src)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("Импорт оборудования завершён",
		zap.String("file", fileHeader.Filename),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return utils.SuccessResponse(ctx, result, "Импорт оборудования завершён", http.StatusOK)
}
