package dto

import (
	"time"

	"calibrify/pkg/types"

	"github.com/shopspring/decimal"
)

type CreateMaintenanceRecordDTO struct {
	EquipmentID     uint64              `json:"equipment_id"     validate:"required,gt=0"`
	MaintenanceDate *types.Date         `json:"maintenance_date" validate:"required"`
	MaintenanceType string              `json:"maintenance_type" validate:"required,maintenance_type"`
	PerformedBy     string              `json:"performed_by"     validate:"required,max=200"`
	Description     string              `json:"description"      validate:"required"`
	PartsReplaced   string              `json:"parts_replaced"`
	Cost            decimal.NullDecimal `json:"cost"`
	Notes           string              `json:"notes"            validate:"omitempty,max=5000"`
}

type MaintenanceRecordDTO struct {
	ID              uint64              `json:"id"`
	EquipmentID     uint64              `json:"equipment_id"`
	MaintenanceDate types.Date          `json:"maintenance_date"`
	MaintenanceType string              `json:"maintenance_type"`
	PerformedBy     string              `json:"performed_by"`
	Description     string              `json:"description"`
	PartsReplaced   string              `json:"parts_replaced"`
	Cost            decimal.NullDecimal `json:"cost"`
	Notes           string              `json:"notes"`
	CreatedAt       *time.Time          `json:"created_at"`
}
