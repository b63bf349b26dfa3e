package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"

	"go.uber.org/zap"
)

// RecentActivityDays - окно "последней активности" на дашборде.
const RecentActivityDays = 30

type DashboardServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardDTO, error)
}

type DashboardService struct {
	repo          repositories.DashboardRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	logger        *zap.Logger
	now           func() time.Time
}

func NewDashboardService(
	repo repositories.DashboardRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{repo: repo, equipmentRepo: equipmentRepo, logger: logger, now: time.Now}
}

// inSchedule повторяет условие due/overdue выборок по хранимому статусу.
func inSchedule(st calibration.Status) bool {
	return st == calibration.StatusActive || st == calibration.StatusCalibrationDue
}

func (s *DashboardService) GetDashboardStats(ctx context.Context) (*dto.DashboardDTO, error) {
	now := s.now()
	since := calibration.StartOfDay(now).AddDate(0, 0, -RecentActivityDays)

	var (
		wg        sync.WaitGroup
		snapshots []entities.ScheduleSnapshot
		activity  *entities.RecordActivity

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { snapshots, err = s.equipmentRepo.GetScheduleSnapshots(ctx); return })
	addTask(func() (err error) { activity, err = s.repo.GetRecordActivity(ctx, since); return })
	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("ошибка сборки дашборда", zap.Errors("errors", errs))
		return nil, errors.Join(errs...)
	}

	res := &dto.DashboardDTO{
		TotalEquipment: len(snapshots),
		ByStatus:       make(map[string]int, len(calibration.Statuses())),
		RecentActivity: dto.RecentActivityDTO{
			Days:               RecentActivityDays,
			CalibrationRecords: activity.CalibrationRecords,
			MaintenanceRecords: activity.MaintenanceRecords,
		},
		TotalMaintenanceSum: activity.MaintenanceCost,
	}
	for _, st := range calibration.Statuses() {
		res.ByStatus[string(st)] = 0
	}

	today := calibration.StartOfDay(now)
	for _, snap := range snapshots {
		st := calibration.DeriveStatus(now, snap.LastCalibrationDate, snap.NextCalibrationDate, snap.Status)
		res.ByStatus[string(st)]++

		if snap.NextCalibrationDate == nil || !inSchedule(snap.Status) {
			continue
		}
		if !snap.NextCalibrationDate.After(today) {
			res.DueForCalibration++
		}
		if snap.NextCalibrationDate.Before(today) {
			res.OverdueCalibration++
		}
	}
	return res, nil
}
