package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceInspection MaintenanceType = "inspection"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenanceInspection:
		return true
	}
	return false
}

// MaintenanceRecord - запись об обслуживании. После создания не меняется.
type MaintenanceRecord struct {
	ID              uint64              `json:"id"`
	EquipmentID     uint64              `json:"equipment_id"`
	MaintenanceDate time.Time           `json:"maintenance_date"`
	MaintenanceType MaintenanceType     `json:"maintenance_type"`
	PerformedBy     string              `json:"performed_by"`
	Description     string              `json:"description"`
	PartsReplaced   string              `json:"parts_replaced"`
	Cost            decimal.NullDecimal `json:"cost"`
	Notes           string              `json:"notes"`
	CreatedAt       *time.Time          `json:"created_at"`
}
