package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"calibrify/internal/dto"
	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const equipmentSheetName = "Оборудование"

type ReportServiceInterface interface {
	WriteEquipmentWorkbook(ctx context.Context, filter types.Filter, w io.Writer) error
}

type ReportService struct {
	equipment EquipmentServiceInterface
	logger    *zap.Logger
}

func NewReportService(equipment EquipmentServiceInterface, logger *zap.Logger) *ReportService {
	return &ReportService{equipment: equipment, logger: logger}
}

func formatSheetTime(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}

func equipmentRow(e dto.EquipmentDTO) []interface{} {
	return []interface{}{
		e.SerialNumber,
		e.Name,
		e.ModelNumber,
		e.Manufacturer,
		e.Category,
		e.Location,
		e.PurchaseDate.String(),
		formatSheetTime(e.LastCalibrationDate),
		formatSheetTime(e.NextCalibrationDate),
		e.IntervalUnit,
		e.IntervalValue,
		e.Status,
		e.Notes,
	}
}

// WriteEquipmentWorkbook выгружает отфильтрованный список оборудования в xlsx.
// Формат листа совпадает с тем, что принимает импорт.
func (s *ReportService) WriteEquipmentWorkbook(ctx context.Context, filter types.Filter, w io.Writer) error {
	filter.WithPagination = false
	list, _, err := s.equipment.GetEquipment(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), equipmentSheetName); err != nil {
		return fmt.Errorf("ошибка подготовки листа: %w", err)
	}

	headers := sheetHeaders()
	if err := f.SetSheetRow(equipmentSheetName, "A1", &headers); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(equipmentSheetName, "A1", lastCol+"1", style)

	for i, e := range list {
		row := equipmentRow(e)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(equipmentSheetName, cell, &row); err != nil {
			return err
		}
	}

	for i, c := range equipmentSheetColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(equipmentSheetName, col, col, c.width)
	}

	s.logger.Info("выгрузка оборудования", zap.Int("rows", len(list)))
	return f.Write(w)
}
