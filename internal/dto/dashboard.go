package dto

import "github.com/shopspring/decimal"

type DashboardDTO struct {
	TotalEquipment      int               `json:"total_equipment"`
	ByStatus            map[string]int    `json:"by_status"`
	DueForCalibration   int               `json:"due_for_calibration"`
	OverdueCalibration  int               `json:"overdue_calibration"`
	RecentActivity      RecentActivityDTO `json:"recent_activity"`
	TotalMaintenanceSum decimal.Decimal   `json:"total_maintenance_cost"`
}

type RecentActivityDTO struct {
	Days               int    `json:"days"`
	CalibrationRecords uint64 `json:"calibration_records"`
	MaintenanceRecords uint64 `json:"maintenance_records"`
}
