package entities

import (
	"time"

	"calibrify/internal/calibration"

	"github.com/shopspring/decimal"
)

// ScheduleSnapshot - минимум полей оборудования для пересчёта статуса.
type ScheduleSnapshot struct {
	ID                  uint64
	LastCalibrationDate *time.Time
	NextCalibrationDate *time.Time
	Status              calibration.Status
}

type RecordActivity struct {
	CalibrationRecords uint64
	MaintenanceRecords uint64
	MaintenanceCost    decimal.Decimal
}
