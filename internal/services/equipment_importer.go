package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"calibrify/internal/dto"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/metrics"
	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StructValidator - то, что умеет валидатор echo.
type StructValidator interface {
	Validate(i interface{}) error
}

type EquipmentImportServiceInterface interface {
	Import(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error)
}

type EquipmentImportService struct {
	equipment EquipmentServiceInterface
	validator StructValidator
	logger    *zap.Logger
}

func NewEquipmentImportService(equipment EquipmentServiceInterface, v StructValidator, logger *zap.Logger) *EquipmentImportService {
	return &EquipmentImportService{equipment: equipment, validator: v, logger: logger}
}

var (
	errInvalidWorkbook = fmt.Errorf("%w: некорректный файл xlsx", apperrors.ErrBadRequest)
	errHeaderNotFound  = fmt.Errorf("%w: не найдена шапка таблицы, нужны колонки серийного номера и наименования", apperrors.ErrBadRequest)
)

// Import проводит каждую строку через тот же путь, что и POST /equipment.
// Строки с существующим серийным номером обновляют оборудование.
func (s *EquipmentImportService) Import(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось открыть файл: %v", errInvalidWorkbook, err)
	}
	defer f.Close()

	rows, headerRow, columns, err := findHeader(f)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultDTO{Errors: []dto.ImportRowError{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		lineNum := i + 1

		createDTO, err := rowToDTO(row, columns)
		if err == nil {
			err = s.validator.Validate(&createDTO)
		}
		var created bool
		if err == nil {
			created, err = s.equipment.UpsertBySerialNumber(ctx, createDTO)
		}

		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{
				Row:          lineNum,
				SerialNumber: strings.TrimSpace(createDTO.SerialNumber),
				Message:      rowErrorMessage(err),
			})
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
		case created:
			result.Created++
			metrics.ImportRowsTotal.WithLabelValues("created").Inc()
		default:
			result.Updated++
			metrics.ImportRowsTotal.WithLabelValues("updated").Inc()
		}
	}

	s.logger.Info("импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// findHeader ищет на листах строку, где есть и серийный номер, и наименование.
func findHeader(f *excelize.File) ([][]string, int, map[string]int, error) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			columns := make(map[string]int)
			for cIdx, cell := range row {
				if key, ok := matchColumn(cell); ok {
					if _, dup := columns[key]; !dup {
						columns[key] = cIdx
					}
				}
			}
			_, hasSerial := columns["serial_number"]
			_, hasName := columns["name"]
			if hasSerial && hasName {
				return rows, rIdx, columns, nil
			}
		}
	}
	return nil, 0, nil, errHeaderNotFound
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func safeGet(row []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowToDTO(row []string, columns map[string]int) (dto.CreateEquipmentDTO, error) {
	d := dto.CreateEquipmentDTO{
		SerialNumber: safeGet(row, columns, "serial_number"),
		Name:         safeGet(row, columns, "name"),
		ModelNumber:  safeGet(row, columns, "model_number"),
		Manufacturer: safeGet(row, columns, "manufacturer"),
		Category:     safeGet(row, columns, "category"),
		Location:     safeGet(row, columns, "location"),
		IntervalUnit: strings.ToLower(safeGet(row, columns, "calibration_interval_type")),
		Status:       strings.ToLower(safeGet(row, columns, "status")),
		Notes:        safeGet(row, columns, "notes"),
	}

	if v := safeGet(row, columns, "purchase_date"); v != "" {
		t, err := parseSheetTime(v)
		if err != nil {
			return d, fmt.Errorf("purchase_date: %w", err)
		}
		date := types.NewDate(t)
		d.PurchaseDate = &date
	}
	if v := safeGet(row, columns, "last_calibration_date"); v != "" {
		t, err := parseSheetTime(v)
		if err != nil {
			return d, fmt.Errorf("last_calibration_date: %w", err)
		}
		d.LastCalibrationDate = null.TimeFrom(t)
	}
	if v := safeGet(row, columns, "next_calibration_date"); v != "" {
		t, err := parseSheetTime(v)
		if err != nil {
			return d, fmt.Errorf("next_calibration_date: %w", err)
		}
		d.NextCalibrationDate = null.TimeFrom(t)
	}
	if v := safeGet(row, columns, "calibration_interval_value"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return d, fmt.Errorf("calibration_interval_value: ожидалось целое число, получено %q", v)
		}
		fi := types.FlexInt(n)
		d.IntervalValue = &fi
	}
	return d, nil
}

func rowErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		parts := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Field(), e.Tag()))
		}
		return "ошибка валидации: " + strings.Join(parts, "; ")
	}
	return err.Error()
}
