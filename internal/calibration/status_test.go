package calibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := ptr(now.Add(-20 * 24 * time.Hour))

	cases := []struct {
		name    string
		last    *time.Time
		next    *time.Time
		current Status
		want    Status
	}{
		{"retired wins over dates", last, ptr(now.Add(-time.Hour)), StatusRetired, StatusRetired},
		{"maintenance wins over dates", last, ptr(now.Add(-time.Hour)), StatusMaintenance, StatusMaintenance},
		{"no last calibration", nil, ptr(now.Add(30 * 24 * time.Hour)), StatusActive, StatusCalibrationOverdue},
		{"no next calibration", last, nil, StatusActive, StatusCalibrationOverdue},
		{"overdue", last, ptr(now.Add(-24 * time.Hour)), StatusActive, StatusCalibrationOverdue},
		{"inside warning window", last, ptr(now.Add(3 * 24 * time.Hour)), StatusActive, StatusCalibrationDue},
		{"far from due", last, ptr(now.Add(30 * 24 * time.Hour)), StatusActive, StatusActive},
		{"stale due becomes active again", last, ptr(now.Add(30 * 24 * time.Hour)), StatusCalibrationDue, StatusActive},
		{"exactly at next is still due", last, ptr(now), StatusActive, StatusCalibrationDue},
		{"exactly at threshold is active", last, ptr(now.Add(WarningWindow)), StatusActive, StatusActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(now, tc.last, tc.next, tc.current))
		})
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	now := time.Now()
	last, next := ptr(now.Add(-time.Hour)), ptr(now.Add(2*24*time.Hour))

	first := DeriveStatus(now, last, next, StatusActive)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DeriveStatus(now, last, next, first))
	}
}

func TestDeriveStatus_RetiredIgnoresEveryDateCombination(t *testing.T) {
	now := time.Now()
	dates := []*time.Time{nil, ptr(now.Add(-48 * time.Hour)), ptr(now), ptr(now.Add(48 * time.Hour)), ptr(now.Add(90 * 24 * time.Hour))}
	for _, l := range dates {
		for _, n := range dates {
			assert.Equal(t, StatusRetired, DeriveStatus(now, l, n, StatusRetired))
		}
	}
}

func TestRecompute_DerivesNextThenStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := Recompute(now, Schedule{
		LastCalibrationDate: ptr(now),
		IntervalUnit:        IntervalMonthly,
		IntervalValue:       1,
		Status:              StatusActive,
	})
	require.NoError(t, err)
	require.NotNil(t, got.NextCalibrationDate)
	assert.Equal(t, now.Add(30*24*time.Hour), *got.NextCalibrationDate)
	assert.Equal(t, StatusActive, got.Status)
}

func TestRecompute_KeepsExplicitNext(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	explicit := now.Add(2 * 24 * time.Hour)

	got, err := Recompute(now, Schedule{
		LastCalibrationDate: ptr(now.Add(-time.Hour)),
		NextCalibrationDate: &explicit,
		IntervalUnit:        IntervalYearly,
		IntervalValue:       1,
		Status:              StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, explicit, *got.NextCalibrationDate)
	assert.Equal(t, StatusCalibrationDue, got.Status)
}

func TestRecompute_NoLastLeavesNextEmpty(t *testing.T) {
	got, err := Recompute(time.Now(), Schedule{IntervalUnit: IntervalDaily, IntervalValue: 1, Status: StatusActive})
	require.NoError(t, err)
	assert.Nil(t, got.NextCalibrationDate)
	assert.Equal(t, StatusCalibrationOverdue, got.Status)
}

func TestRecompute_StickyStatusSurvives(t *testing.T) {
	now := time.Now()
	for _, st := range []Status{StatusRetired, StatusMaintenance} {
		got, err := Recompute(now, Schedule{
			LastCalibrationDate: ptr(now.Add(-400 * 24 * time.Hour)),
			IntervalUnit:        IntervalDaily,
			IntervalValue:       1,
			Status:              st,
		})
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
		assert.NotNil(t, got.NextCalibrationDate)
	}
}

func TestRecompute_RejectsInvalidInterval(t *testing.T) {
	in := Schedule{LastCalibrationDate: ptr(time.Now()), IntervalUnit: "bogus", IntervalValue: 1, Status: StatusActive}
	got, err := Recompute(time.Now(), in)
	assert.ErrorIs(t, err, ErrInvalidIntervalUnit)
	assert.Equal(t, in, got)

	in.IntervalUnit = IntervalDaily
	in.IntervalValue = 0
	_, err = Recompute(time.Now(), in)
	assert.ErrorIs(t, err, ErrInvalidIntervalValue)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, 6, 2, 3, 30, 0, 0, loc) // 1 июня 22:30 UTC
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("RETIRED")
	require.NoError(t, err)
	assert.True(t, st.Sticky())
	assert.Equal(t, "Retired", st.Display())

	_, err = ParseStatus("broken")
	assert.Error(t, err)
}
