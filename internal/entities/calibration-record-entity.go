package entities

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

// CalibrationRecord - запись о проведённой калибровке. После создания не меняется.
type CalibrationRecord struct {
	ID                  uint64          `json:"id"`
	EquipmentID         uint64          `json:"equipment_id"`
	CalibrationDate     time.Time       `json:"calibration_date"`
	CalibratedBy        string          `json:"calibrated_by"`
	CertificateNumber   string          `json:"certificate_number"`
	CertificateFile     null.String     `json:"certificate_file"`
	CalibrationStandard string          `json:"calibration_standard"`
	MeasurementPoints   json.RawMessage `json:"measurement_points"`
	Results             json.RawMessage `json:"results"`
	Notes               string          `json:"notes"`
	CreatedAt           *time.Time      `json:"created_at"`
}
