package services

import (
	"context"
	"testing"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/dto"
	"calibrify/internal/entities"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type EquipmentServiceSuite struct {
	suite.Suite
	ctx          context.Context
	repo         *fakeEquipmentRepo
	calibrations *fakeCalibrationRepo
	maintenances *fakeMaintenanceRepo
	cache        *fakeCache
	storage      *fakeStorage
	service      *EquipmentService
}

func (s *EquipmentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = newFakeEquipmentRepo()
	s.calibrations = newFakeCalibrationRepo()
	s.maintenances = newFakeMaintenanceRepo()
	s.cache = newFakeCache()
	s.storage = newFakeStorage()
	s.service = NewEquipmentService(s.repo, s.calibrations, s.maintenances, fakeTxManager{}, s.cache, time.Minute, s.storage, zap.NewNop())
	s.service.now = func() time.Time { return fixedNow }
}

func TestEquipmentServiceSuite(t *testing.T) {
	suite.Run(t, new(EquipmentServiceSuite))
}

func newCreateDTO(serial string) dto.CreateEquipmentDTO {
	purchase := types.NewDate(time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC))
	return dto.CreateEquipmentDTO{
		Name:         "Мультиметр Fluke 87V",
		ModelNumber:  "87V",
		SerialNumber: serial,
		Manufacturer: "Fluke",
		Category:     "Электроизмерения",
		Location:     "Лаборатория 1",
		PurchaseDate: &purchase,
	}
}

func flex(v int) *types.FlexInt {
	f := types.FlexInt(v)
	return &f
}

func (s *EquipmentServiceSuite) TestCreate_Defaults() {
	res, err := s.service.CreateEquipment(s.ctx, newCreateDTO("SN-001"))
	s.Require().NoError(err)

	s.Equal("monthly", res.IntervalUnit)
	s.Equal(1, res.IntervalValue)
	// без даты последней калибровки оборудование считается просроченным
	s.Equal(string(calibration.StatusCalibrationOverdue), res.Status)
	s.Equal("Calibration Overdue", res.StatusDisplay)
	s.False(res.NextCalibrationDate.Valid)
	s.NotNil(res.CalibrationRecords)
	s.NotNil(res.MaintenanceRecords)
}

func (s *EquipmentServiceSuite) TestCreate_DerivesNextDateAndStatus() {
	d := newCreateDTO("SN-002")
	d.LastCalibrationDate = null.TimeFrom(fixedNow)
	d.IntervalUnit = "monthly"
	d.IntervalValue = flex(1)

	res, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)

	s.Require().True(res.NextCalibrationDate.Valid)
	s.True(res.NextCalibrationDate.Time.Equal(fixedNow.Add(30 * day)))
	s.Equal(string(calibration.StatusActive), res.Status)

	stored := s.repo.items[res.ID]
	s.Equal(calibration.StatusActive, stored.Status)
	s.True(stored.NextCalibrationDate.Time.Equal(fixedNow.Add(30 * day)))
}

func (s *EquipmentServiceSuite) TestCreate_InsideWarningWindow() {
	d := newCreateDTO("SN-003")
	d.LastCalibrationDate = null.TimeFrom(fixedNow.Add(-27 * day))
	d.NextCalibrationDate = null.TimeFrom(fixedNow.Add(3 * day))

	res, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusCalibrationDue), res.Status)
}

func (s *EquipmentServiceSuite) TestCreate_RejectsInvalidInterval() {
	d := newCreateDTO("SN-004")
	d.IntervalValue = flex(0)
	_, err := s.service.CreateEquipment(s.ctx, d)
	s.ErrorIs(err, calibration.ErrInvalidIntervalValue)

	d = newCreateDTO("SN-005")
	d.IntervalUnit = "fortnightly"
	_, err = s.service.CreateEquipment(s.ctx, d)
	s.ErrorIs(err, calibration.ErrInvalidIntervalUnit)

	s.Empty(s.repo.items)
}

func (s *EquipmentServiceSuite) TestCreate_DuplicateSerial() {
	_, err := s.service.CreateEquipment(s.ctx, newCreateDTO("SN-006"))
	s.Require().NoError(err)

	_, err = s.service.CreateEquipment(s.ctx, newCreateDTO("SN-006"))
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Len(s.repo.items, 1)
}

func (s *EquipmentServiceSuite) TestCreate_RetiredIgnoresDates() {
	d := newCreateDTO("SN-007")
	d.Status = "retired"
	d.LastCalibrationDate = null.TimeFrom(fixedNow.Add(-400 * day))

	res, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusRetired), res.Status)
}

func (s *EquipmentServiceSuite) TestUpdate_IntervalChangeRederivesNext() {
	d := newCreateDTO("SN-010")
	last := fixedNow.Add(-10 * day)
	d.LastCalibrationDate = null.TimeFrom(last)
	created, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusActive), created.Status)

	res, err := s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{
		IntervalUnit: utils.ToPtr("weekly"),
	})
	s.Require().NoError(err)
	s.True(res.NextCalibrationDate.Time.Equal(last.Add(7 * day)))
	s.Equal(string(calibration.StatusCalibrationOverdue), res.Status)
}

func (s *EquipmentServiceSuite) TestUpdate_ExplicitNextWins() {
	d := newCreateDTO("SN-011")
	d.LastCalibrationDate = null.TimeFrom(fixedNow.Add(-10 * day))
	created, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)

	next := fixedNow.Add(100 * day)
	res, err := s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{
		IntervalValue:       flex(6),
		NextCalibrationDate: &next,
	})
	s.Require().NoError(err)
	s.Equal(6, res.IntervalValue)
	s.True(res.NextCalibrationDate.Time.Equal(next))
}

func (s *EquipmentServiceSuite) TestUpdate_StickyStatuses() {
	d := newCreateDTO("SN-012")
	d.LastCalibrationDate = null.TimeFrom(fixedNow)
	created, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)

	res, err := s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{Status: utils.ToPtr("maintenance")})
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusMaintenance), res.Status)

	// обычное обновление не снимает ручной статус
	res, err = s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{Location: utils.ToPtr("Склад")})
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusMaintenance), res.Status)
	s.Equal("Склад", res.Location)

	res, err = s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{Status: utils.ToPtr("active")})
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusActive), res.Status)
}

func (s *EquipmentServiceSuite) TestUpdate_NotFound() {
	_, err := s.service.UpdateEquipment(s.ctx, 999, dto.UpdateEquipmentDTO{Name: utils.ToPtr("x")})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *EquipmentServiceSuite) TestFind_StatusDerivedAtReadTime() {
	d := newCreateDTO("SN-020")
	d.LastCalibrationDate = null.TimeFrom(fixedNow)
	created, err := s.service.CreateEquipment(s.ctx, d)
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusActive), created.Status)

	s.service.now = func() time.Time { return fixedNow.Add(40 * day) }
	res, err := s.service.FindEquipment(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(string(calibration.StatusCalibrationOverdue), res.Status)

	// в БД статус не переписывается при чтении
	s.Equal(calibration.StatusActive, s.repo.items[created.ID].Status)
}

func (s *EquipmentServiceSuite) TestFind_UsesCache() {
	created, err := s.service.CreateEquipment(s.ctx, newCreateDTO("SN-021"))
	s.Require().NoError(err)
	finds := s.repo.finds

	_, err = s.service.FindEquipment(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(finds, s.repo.finds)

	_, err = s.service.UpdateEquipment(s.ctx, created.ID, dto.UpdateEquipmentDTO{Name: utils.ToPtr("Новое имя")})
	s.Require().NoError(err)
	s.Contains(s.cache.dels, equipmentCacheKey(created.ID))

	res, err := s.service.FindEquipment(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Новое имя", res.Name)
}

func (s *EquipmentServiceSuite) TestDelete_RemovesCertificates() {
	created, err := s.service.CreateEquipment(s.ctx, newCreateDTO("SN-030"))
	s.Require().NoError(err)

	_, err = s.calibrations.CreateCalibrationRecord(s.ctx, nil, entities.CalibrationRecord{
		EquipmentID:     created.ID,
		CalibrationDate: fixedNow,
		CertificateFile: null.StringFrom("calibration_certificates/a.pdf"),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteEquipment(s.ctx, created.ID))
	s.Empty(s.repo.items)
	s.Equal([]string{"calibration_certificates/a.pdf"}, s.storage.deleted)
	s.Contains(s.cache.dels, equipmentCacheKey(created.ID))

	s.ErrorIs(s.service.DeleteEquipment(s.ctx, created.ID), apperrors.ErrNotFound)
}

func (s *EquipmentServiceSuite) seedScheduled(serial string, next time.Time, status calibration.Status) uint64 {
	last := next.Add(-30 * day)
	id, err := s.repo.CreateEquipment(s.ctx, nil, entities.Equipment{
		Name:                serial,
		SerialNumber:        serial,
		LastCalibrationDate: null.TimeFrom(last),
		NextCalibrationDate: null.TimeFrom(next),
		IntervalUnit:        calibration.IntervalMonthly,
		IntervalValue:       1,
		Status:              status,
	})
	s.Require().NoError(err)
	return id
}

func (s *EquipmentServiceSuite) TestDueAndOverdue() {
	today := calibration.StartOfDay(fixedNow)
	todayID := s.seedScheduled("TODAY", today, calibration.StatusCalibrationDue)
	yesterdayID := s.seedScheduled("YESTERDAY", today.Add(-day), calibration.StatusActive)
	s.seedScheduled("TOMORROW", today.Add(day), calibration.StatusCalibrationDue)
	s.seedScheduled("RETIRED", today.Add(-10*day), calibration.StatusRetired)
	s.seedScheduled("MAINT", today.Add(-10*day), calibration.StatusMaintenance)

	due, err := s.service.GetDueForCalibration(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]uint64{todayID, yesterdayID}, ids(due))

	overdue, err := s.service.GetOverdueCalibration(s.ctx)
	s.Require().NoError(err)
	s.Equal([]uint64{yesterdayID}, ids(overdue))
	s.Equal(string(calibration.StatusCalibrationOverdue), overdue[0].Status)
}

func (s *EquipmentServiceSuite) TestUpsertBySerialNumber() {
	d := newCreateDTO("SN-040")
	d.LastCalibrationDate = null.TimeFrom(fixedNow.Add(-5 * day))

	created, err := s.service.UpsertBySerialNumber(s.ctx, d)
	s.Require().NoError(err)
	s.True(created)

	update := newCreateDTO("SN-040")
	update.Location = "Цех 2"
	created, err = s.service.UpsertBySerialNumber(s.ctx, update)
	s.Require().NoError(err)
	s.False(created)

	s.Require().Len(s.repo.items, 1)
	stored := s.repo.sorted()[0]
	s.Equal("Цех 2", stored.Location)
	s.True(stored.LastCalibrationDate.Time.Equal(fixedNow.Add(-5 * day)))
	s.True(stored.NextCalibrationDate.Time.Equal(fixedNow.Add(25 * day)))
	s.Equal(calibration.StatusActive, stored.Status)
}

func ids(list []dto.EquipmentDTO) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
