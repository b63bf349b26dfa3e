package dto

import (
	"time"

	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	Name         string      `json:"name"          validate:"required,max=200"`
	ModelNumber  string      `json:"model_number"  validate:"required,max=100"`
	SerialNumber string      `json:"serial_number" validate:"required,max=100,serial_number"`
	Manufacturer string      `json:"manufacturer"  validate:"required,max=200"`
	Category     string      `json:"category"      validate:"required,max=100"`
	Location     string      `json:"location"      validate:"required,max=200"`
	PurchaseDate *types.Date `json:"purchase_date" validate:"required"`

	LastCalibrationDate null.Time `json:"last_calibration_date"`
	NextCalibrationDate null.Time `json:"next_calibration_date"`

	// Пусто - monthly, nil - 1
	IntervalUnit  string         `json:"calibration_interval_type"  validate:"omitempty,interval_unit"`
	IntervalValue *types.FlexInt `json:"calibration_interval_value" validate:"omitempty,min=1"`

	Status string `json:"status" validate:"omitempty,equipment_status"`
	Notes  string `json:"notes"  validate:"omitempty,max=5000"`
}

type UpdateEquipmentDTO struct {
	Name         *string     `json:"name,omitempty"          validate:"omitempty,min=1,max=200"`
	ModelNumber  *string     `json:"model_number,omitempty"  validate:"omitempty,min=1,max=100"`
	SerialNumber *string     `json:"serial_number,omitempty" validate:"omitempty,max=100,serial_number"`
	Manufacturer *string     `json:"manufacturer,omitempty"  validate:"omitempty,min=1,max=200"`
	Category     *string     `json:"category,omitempty"      validate:"omitempty,min=1,max=100"`
	Location     *string     `json:"location,omitempty"      validate:"omitempty,min=1,max=200"`
	PurchaseDate *types.Date `json:"purchase_date,omitempty"`

	LastCalibrationDate *time.Time `json:"last_calibration_date,omitempty"`
	NextCalibrationDate *time.Time `json:"next_calibration_date,omitempty"`

	IntervalUnit  *string        `json:"calibration_interval_type,omitempty"  validate:"omitempty,interval_unit"`
	IntervalValue *types.FlexInt `json:"calibration_interval_value,omitempty" validate:"omitempty,min=1"`

	Status *string `json:"status,omitempty" validate:"omitempty,equipment_status"`
	Notes  *string `json:"notes,omitempty"  validate:"omitempty,max=5000"`
}

type EquipmentDTO struct {
	ID                  uint64     `json:"id"`
	Name                string     `json:"name"`
	ModelNumber         string     `json:"model_number"`
	SerialNumber        string     `json:"serial_number"`
	Manufacturer        string     `json:"manufacturer"`
	Category            string     `json:"category"`
	Location            string     `json:"location"`
	PurchaseDate        types.Date `json:"purchase_date"`
	LastCalibrationDate null.Time  `json:"last_calibration_date"`
	NextCalibrationDate null.Time  `json:"next_calibration_date"`
	IntervalUnit        string     `json:"calibration_interval_type"`
	IntervalValue       int        `json:"calibration_interval_value"`
	Status              string     `json:"status"`
	StatusDisplay       string     `json:"status_display"`
	Notes               string     `json:"notes"`

	CalibrationRecords []CalibrationRecordDTO `json:"calibration_records,omitempty"`
	MaintenanceRecords []MaintenanceRecordDTO `json:"maintenance_records,omitempty"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShortEquipmentDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
}

// ImportResultDTO - итог импорта оборудования из xlsx.
type ImportResultDTO struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

type ImportRowError struct {
	Row          int    `json:"row"`
	SerialNumber string `json:"serial_number,omitempty"`
	Message      string `json:"message"`
}
