package entities

import (
	"time"

	"calibrify/internal/calibration"
	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
)

type Equipment struct {
	ID                  uint64                   `json:"id"`
	Name                string                   `json:"name"`
	ModelNumber         string                   `json:"model_number"`
	SerialNumber        string                   `json:"serial_number"`
	Manufacturer        string                   `json:"manufacturer"`
	Category            string                   `json:"category"`
	Location            string                   `json:"location"`
	PurchaseDate        time.Time                `json:"purchase_date"`
	LastCalibrationDate null.Time                `json:"last_calibration_date"`
	NextCalibrationDate null.Time                `json:"next_calibration_date"`
	IntervalUnit        calibration.IntervalUnit `json:"calibration_interval_type"`
	IntervalValue       int                      `json:"calibration_interval_value"`
	Status              calibration.Status       `json:"status"`
	Notes               string                   `json:"notes"`

	types.BaseEntity // CreatedAt, UpdatedAt

	// Связанные данные (не колонки в таблице)
	CalibrationRecords []CalibrationRecord `json:"-" db:"-"`
	MaintenanceRecords []MaintenanceRecord `json:"-" db:"-"`
}

// Schedule вытаскивает из оборудования поля расписания калибровки.
func (e *Equipment) Schedule() calibration.Schedule {
	return calibration.Schedule{
		LastCalibrationDate: e.LastCalibrationDate.Ptr(),
		NextCalibrationDate: e.NextCalibrationDate.Ptr(),
		IntervalUnit:        e.IntervalUnit,
		IntervalValue:       e.IntervalValue,
		Status:              e.Status,
	}
}

// ApplySchedule записывает пересчитанное расписание обратно.
func (e *Equipment) ApplySchedule(s calibration.Schedule) {
	e.LastCalibrationDate = null.TimeFromPtr(s.LastCalibrationDate)
	e.NextCalibrationDate = null.TimeFromPtr(s.NextCalibrationDate)
	e.IntervalUnit = s.IntervalUnit
	e.IntervalValue = s.IntervalValue
	e.Status = s.Status
}

// CurrentStatus - статус на момент now, без записи в БД.
func (e *Equipment) CurrentStatus(now time.Time) calibration.Status {
	return calibration.DeriveStatus(now, e.LastCalibrationDate.Ptr(), e.NextCalibrationDate.Ptr(), e.Status)
}
