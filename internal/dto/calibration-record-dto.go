package dto

import (
	"encoding/json"
	"time"

	"calibrify/pkg/types"
)

type CreateCalibrationRecordDTO struct {
	EquipmentID         uint64          `json:"equipment_id"         validate:"required,gt=0"`
	CalibrationDate     *types.Date     `json:"calibration_date"     validate:"required"`
	CalibratedBy        string          `json:"calibrated_by"        validate:"required,max=200"`
	CertificateNumber   string          `json:"certificate_number"   validate:"required,max=100"`
	CalibrationStandard string          `json:"calibration_standard" validate:"required,max=200"`
	MeasurementPoints   json.RawMessage `json:"measurement_points"   validate:"required"`
	Results             json.RawMessage `json:"results"              validate:"required"`
	Notes               string          `json:"notes"                validate:"omitempty,max=5000"`
}

type CalibrationRecordDTO struct {
	ID                  uint64          `json:"id"`
	EquipmentID         uint64          `json:"equipment_id"`
	CalibrationDate     types.Date      `json:"calibration_date"`
	CalibratedBy        string          `json:"calibrated_by"`
	CertificateNumber   string          `json:"certificate_number"`
	CertificateFile     *string         `json:"certificate_file"`
	CalibrationStandard string          `json:"calibration_standard"`
	MeasurementPoints   json.RawMessage `json:"measurement_points"`
	Results             json.RawMessage `json:"results"`
	Notes               string          `json:"notes"`
	CreatedAt           *time.Time      `json:"created_at"`
}
