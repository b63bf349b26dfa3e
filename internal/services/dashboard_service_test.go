package services

import (
	"context"
	"testing"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/entities"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardService_GetDashboardStats(t *testing.T) {
	ctx := context.Background()
	equipment := newFakeEquipmentRepo()
	repo := &fakeDashboardRepo{activity: entities.RecordActivity{
		CalibrationRecords: 4,
		MaintenanceRecords: 2,
		MaintenanceCost:    decimal.RequireFromString("310.50"),
	}}
	service := NewDashboardService(repo, equipment, zap.NewNop())
	service.now = func() time.Time { return fixedNow }

	today := calibration.StartOfDay(fixedNow)
	seed := func(serial string, next *time.Time, status calibration.Status) {
		e := entities.Equipment{SerialNumber: serial, Status: status, IntervalUnit: calibration.IntervalMonthly, IntervalValue: 1}
		if next != nil {
			e.LastCalibrationDate = null.TimeFrom(next.Add(-30 * day))
			e.NextCalibrationDate = null.TimeFrom(*next)
		}
		_, err := equipment.CreateEquipment(ctx, nil, e)
		require.NoError(t, err)
	}
	far := fixedNow.Add(60 * day)
	soon := fixedNow.Add(3 * day)
	past := today.Add(-day)

	seed("A", &far, calibration.StatusActive)
	seed("B", &soon, calibration.StatusActive)
	seed("C", &past, calibration.StatusActive)
	seed("D", &today, calibration.StatusCalibrationDue)
	seed("E", &past, calibration.StatusRetired)
	seed("F", nil, calibration.StatusActive)

	res, err := service.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalEquipment)
	assert.Equal(t, 1, res.ByStatus["active"])
	assert.Equal(t, 1, res.ByStatus["calibration_due"])
	assert.Equal(t, 3, res.ByStatus["calibration_overdue"])
	assert.Equal(t, 1, res.ByStatus["retired"])
	assert.Equal(t, 0, res.ByStatus["maintenance"])

	assert.Equal(t, 2, res.DueForCalibration)
	assert.Equal(t, 1, res.OverdueCalibration)

	assert.Equal(t, RecentActivityDays, res.RecentActivity.Days)
	assert.Equal(t, uint64(4), res.RecentActivity.CalibrationRecords)
	assert.True(t, res.TotalMaintenanceSum.Equal(decimal.RequireFromString("310.5")))
	assert.True(t, repo.since.Equal(today.AddDate(0, 0, -RecentActivityDays)))
}
