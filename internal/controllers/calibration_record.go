package controllers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"calibrify/internal/dto"
	"calibrify/internal/services"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CalibrationRecordController struct {
	service services.CalibrationRecordServiceInterface
	logger  *zap.Logger
}

func NewCalibrationRecordController(service services.CalibrationRecordServiceInterface, logger *zap.Logger) *CalibrationRecordController {
	return &CalibrationRecordController{service: service, logger: logger}
}

func (c *CalibrationRecordController) GetCalibrationRecords(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.service.GetCalibrationRecords(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список записей о калибровке успешно получен", http.StatusOK, total)
}

func (c *CalibrationRecordController) FindCalibrationRecord(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.FindCalibrationRecord(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись о калибровке успешно найдена", http.StatusOK)
}

// CreateCalibrationRecord принимает JSON или multipart: поле data с JSON
// записи и необязательный файл certificate.
func (c *CalibrationRecordController) CreateCalibrationRecord(ctx echo.Context) error {
	var (
		createDTO   dto.CreateCalibrationRecordDTO
		certificate *multipart.FileHeader
	)

	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		data := ctx.FormValue("data")
		if data == "" {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Поле data обязательно", apperrors.ErrBadRequest, nil),
				c.logger,
			)
		}
		if err := json.Unmarshal([]byte(data), &createDTO); err != nil {
			c.logger.Warn("CreateCalibrationRecord: некорректный JSON в поле data", zap.Error(err))
			return utils.ErrorResponse(ctx, bindError(err), c.logger)
		}

		fileHeader, err := ctx.FormFile("certificate")
		switch {
		case err == nil:
			certificate = fileHeader
		case !errors.Is(err, http.ErrMissingFile):
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Ошибка чтения файла сертификата", err, nil),
				c.logger,
			)
		}
	} else if err := ctx.Bind(&createDTO); err != nil {
		c.logger.Warn("CreateCalibrationRecord: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}

	if err := ctx.Validate(&createDTO); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.CreateCalibrationRecord(ctx.Request().Context(), createDTO, certificate)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись о калибровке успешно создана", http.StatusCreated)
}

// DownloadCertificate перенаправляет на файл сертификата (локальный путь или presigned S3).
func (c *CalibrationRecordController) DownloadCertificate(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	url, err := c.service.GetCertificateURL(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.Redirect(http.StatusFound, url)
}

func (c *CalibrationRecordController) DeleteCalibrationRecord(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.service.DeleteCalibrationRecord(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, struct{}{}, "Запись о калибровке успешно удалена", http.StatusOK)
}
