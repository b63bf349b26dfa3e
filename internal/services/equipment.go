package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/filestorage"
	"calibrify/pkg/metrics"
	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	defaultIntervalUnit  = calibration.IntervalMonthly
	defaultIntervalValue = 1
)

type EquipmentServiceInterface interface {
	GetEquipment(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	CreateEquipment(ctx context.Context, createDTO dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, id uint64, updateDTO dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	DeleteEquipment(ctx context.Context, id uint64) error
	GetDueForCalibration(ctx context.Context) ([]dto.EquipmentDTO, error)
	GetOverdueCalibration(ctx context.Context) ([]dto.EquipmentDTO, error)
	// UpsertBySerialNumber создаёт оборудование или обновляет существующее с тем же серийным номером.
	UpsertBySerialNumber(ctx context.Context, createDTO dto.CreateEquipmentDTO) (created bool, err error)
}

type EquipmentService struct {
	repo            repositories.EquipmentRepositoryInterface
	calibrationRepo repositories.CalibrationRecordRepositoryInterface
	maintenanceRepo repositories.MaintenanceRecordRepositoryInterface
	txManager       repositories.TxManagerInterface
	cache           repositories.CacheRepositoryInterface
	cacheTTL        time.Duration
	fileStorage     filestorage.FileStorageInterface
	logger          *zap.Logger
	now             func() time.Time
}

func NewEquipmentService(
	repo repositories.EquipmentRepositoryInterface,
	calibrationRepo repositories.CalibrationRecordRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRecordRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		repo:            repo,
		calibrationRepo: calibrationRepo,
		maintenanceRepo: maintenanceRepo,
		txManager:       txManager,
		cache:           cache,
		cacheTTL:        cacheTTL,
		fileStorage:     fileStorage,
		logger:          logger,
		now:             time.Now,
	}
}

func equipmentCacheKey(id uint64) string {
	return fmt.Sprintf("equipment:%d", id)
}

// toEquipmentDTO отдаёт статус на момент now: хранимый статус мог устареть с момента записи.
func toEquipmentDTO(e *entities.Equipment, now time.Time) dto.EquipmentDTO {
	status := e.CurrentStatus(now)
	return dto.EquipmentDTO{
		ID:                  e.ID,
		Name:                e.Name,
		ModelNumber:         e.ModelNumber,
		SerialNumber:        e.SerialNumber,
		Manufacturer:        e.Manufacturer,
		Category:            e.Category,
		Location:            e.Location,
		PurchaseDate:        types.NewDate(e.PurchaseDate),
		LastCalibrationDate: e.LastCalibrationDate,
		NextCalibrationDate: e.NextCalibrationDate,
		IntervalUnit:        string(e.IntervalUnit),
		IntervalValue:       e.IntervalValue,
		Status:              string(status),
		StatusDisplay:       status.Display(),
		Notes:               e.Notes,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func toEquipmentDTOs(list []entities.Equipment, now time.Time) []dto.EquipmentDTO {
	res := make([]dto.EquipmentDTO, 0, len(list))
	for i := range list {
		res = append(res, toEquipmentDTO(&list[i], now))
	}
	return res
}

// newEquipmentFromDTO применяет значения по умолчанию: monthly, 1, active.
func newEquipmentFromDTO(d dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	e := &entities.Equipment{
		Name:          strings.TrimSpace(d.Name),
		ModelNumber:   strings.TrimSpace(d.ModelNumber),
		SerialNumber:  strings.TrimSpace(d.SerialNumber),
		Manufacturer:  strings.TrimSpace(d.Manufacturer),
		Category:      strings.TrimSpace(d.Category),
		Location:      strings.TrimSpace(d.Location),
		Notes:         d.Notes,
		IntervalUnit:  defaultIntervalUnit,
		IntervalValue: defaultIntervalValue,
		Status:        calibration.StatusActive,
	}
	if d.PurchaseDate == nil {
		return nil, apperrors.NewInvalidInputError("purchase_date", "обязательное поле")
	}
	e.PurchaseDate = d.PurchaseDate.Time

	if d.LastCalibrationDate.Valid {
		e.LastCalibrationDate = null.TimeFrom(d.LastCalibrationDate.Time.UTC())
	}
	if d.NextCalibrationDate.Valid {
		e.NextCalibrationDate = null.TimeFrom(d.NextCalibrationDate.Time.UTC())
	}

	if d.IntervalUnit != "" {
		unit, err := calibration.ParseIntervalUnit(d.IntervalUnit)
		if err != nil {
			return nil, err
		}
		e.IntervalUnit = unit
	}
	if d.IntervalValue != nil {
		e.IntervalValue = d.IntervalValue.Int()
	}
	if d.Status != "" {
		st, err := calibration.ParseStatus(d.Status)
		if err != nil {
			return nil, err
		}
		e.Status = st
	}
	return e, nil
}

// applyEquipmentUpdate переносит заданные поля. Если изменилась база расчёта
// (last, единица или значение интервала), а next не передан, next будет выведен заново.
func applyEquipmentUpdate(e *entities.Equipment, d dto.UpdateEquipmentDTO) error {
	scheduleChanged := false

	if d.Name != nil {
		e.Name = strings.TrimSpace(*d.Name)
	}
	if d.ModelNumber != nil {
		e.ModelNumber = strings.TrimSpace(*d.ModelNumber)
	}
	if d.SerialNumber != nil {
		e.SerialNumber = strings.TrimSpace(*d.SerialNumber)
	}
	if d.Manufacturer != nil {
		e.Manufacturer = strings.TrimSpace(*d.Manufacturer)
	}
	if d.Category != nil {
		e.Category = strings.TrimSpace(*d.Category)
	}
	if d.Location != nil {
		e.Location = strings.TrimSpace(*d.Location)
	}
	if d.PurchaseDate != nil {
		e.PurchaseDate = d.PurchaseDate.Time
	}
	if d.Notes != nil {
		e.Notes = *d.Notes
	}

	if d.LastCalibrationDate != nil {
		last := d.LastCalibrationDate.UTC()
		if !e.LastCalibrationDate.Valid || !e.LastCalibrationDate.Time.Equal(last) {
			scheduleChanged = true
		}
		e.LastCalibrationDate = null.TimeFrom(last)
	}
	if d.IntervalUnit != nil {
		unit, err := calibration.ParseIntervalUnit(*d.IntervalUnit)
		if err != nil {
			return err
		}
		if unit != e.IntervalUnit {
			scheduleChanged = true
		}
		e.IntervalUnit = unit
	}
	if d.IntervalValue != nil {
		if v := d.IntervalValue.Int(); v != e.IntervalValue {
			scheduleChanged = true
			e.IntervalValue = v
		}
	}
	if d.Status != nil {
		st, err := calibration.ParseStatus(*d.Status)
		if err != nil {
			return err
		}
		e.Status = st
	}

	switch {
	case d.NextCalibrationDate != nil:
		e.NextCalibrationDate = null.TimeFrom(d.NextCalibrationDate.UTC())
	case scheduleChanged:
		e.NextCalibrationDate = null.Time{}
	}
	return nil
}

func sameTime(a, b null.Time) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Time.Equal(b.Time)
}

// recompute - обязательный шаг перед любой записью оборудования.
func (s *EquipmentService) recompute(e *entities.Equipment) error {
	schedule, err := calibration.Recompute(s.now(), e.Schedule())
	if err != nil {
		return err
	}
	e.ApplySchedule(schedule)
	metrics.StatusDerivationsTotal.WithLabelValues(string(e.Status)).Inc()
	return nil
}

func (s *EquipmentService) GetEquipment(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	list, total, err := s.repo.GetEquipment(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка оборудования", zap.Error(err))
		return nil, 0, err
	}
	return toEquipmentDTOs(list, s.now()), total, nil
}

// findStored читает строку оборудования, сначала из кеша.
func (s *EquipmentService) findStored(ctx context.Context, id uint64) (*entities.Equipment, error) {
	key := equipmentCacheKey(id)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var e entities.Equipment
		if err := json.Unmarshal([]byte(cached), &e); err == nil {
			return &e, nil
		}
		s.logger.Warn("битая запись в кеше", zap.String("key", key))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("кеш недоступен", zap.String("key", key), zap.Error(err))
	}

	e, err := s.repo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(e); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("не удалось записать в кеш", zap.String("key", key), zap.Error(err))
		}
	}
	return e, nil
}

func (s *EquipmentService) invalidate(ctx context.Context, id uint64) {
	if err := s.cache.Del(ctx, equipmentCacheKey(id)); err != nil {
		s.logger.Warn("не удалось сбросить кеш", zap.Uint64("equipment_id", id), zap.Error(err))
	}
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	e, err := s.findStored(ctx, id)
	if err != nil {
		return nil, err
	}

	calibrations, err := s.calibrationRepo.GetByEquipmentID(ctx, id)
	if err != nil {
		return nil, err
	}
	maintenances, err := s.maintenanceRepo.GetByEquipmentID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := toEquipmentDTO(e, s.now())
	res.CalibrationRecords = toCalibrationRecordDTOs(calibrations)
	res.MaintenanceRecords = toMaintenanceRecordDTOs(maintenances)
	return &res, nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, createDTO dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	e, err := newEquipmentFromDTO(createDTO)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(e); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateEquipment(ctx, nil, *e)
	if err != nil {
		return nil, err
	}
	metrics.EquipmentWritesTotal.WithLabelValues("create").Inc()
	s.logger.Info("оборудование создано",
		zap.Uint64("id", id),
		zap.String("serial_number", e.SerialNumber),
		zap.String("status", string(e.Status)),
	)
	return s.FindEquipment(ctx, id)
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, updateDTO dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		e, err := s.repo.FindEquipmentForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyEquipmentUpdate(e, updateDTO); err != nil {
			return err
		}
		if err := s.recompute(e); err != nil {
			return err
		}
		return s.repo.UpdateEquipment(ctx, tx, *e)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	metrics.EquipmentWritesTotal.WithLabelValues("update").Inc()
	s.logger.Info("оборудование обновлено", zap.Uint64("id", id))
	return s.FindEquipment(ctx, id)
}

func (s *EquipmentService) UpsertBySerialNumber(ctx context.Context, createDTO dto.CreateEquipmentDTO) (bool, error) {
	incoming, err := newEquipmentFromDTO(createDTO)
	if err != nil {
		return false, err
	}

	created := false
	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.repo.FindBySerialNumber(ctx, tx, incoming.SerialNumber)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if existing == nil {
			if err := s.recompute(incoming); err != nil {
				return err
			}
			id, err = s.repo.CreateEquipment(ctx, tx, *incoming)
			created = true
			return err
		}

		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		// Пустые даты в строке не стирают уже известные
		if !incoming.LastCalibrationDate.Valid {
			incoming.LastCalibrationDate = existing.LastCalibrationDate
		}
		if !incoming.NextCalibrationDate.Valid && sameTime(existing.LastCalibrationDate, incoming.LastCalibrationDate) &&
			existing.IntervalUnit == incoming.IntervalUnit && existing.IntervalValue == incoming.IntervalValue {
			incoming.NextCalibrationDate = existing.NextCalibrationDate
		}
		if createDTO.Status == "" {
			incoming.Status = existing.Status
		}
		if err := s.recompute(incoming); err != nil {
			return err
		}
		id = existing.ID
		return s.repo.UpdateEquipment(ctx, tx, *incoming)
	})
	if err != nil {
		return false, err
	}

	if created {
		metrics.EquipmentWritesTotal.WithLabelValues("create").Inc()
	} else {
		s.invalidate(ctx, id)
		metrics.EquipmentWritesTotal.WithLabelValues("update").Inc()
	}
	return created, nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uint64) error {
	files, err := s.calibrationRepo.GetCertificateFiles(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteEquipment(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	metrics.EquipmentWritesTotal.WithLabelValues("delete").Inc()

	for _, f := range files {
		if err := s.fileStorage.Delete(ctx, f); err != nil {
			s.logger.Warn("не удалось удалить файл сертификата", zap.String("file", f), zap.Error(err))
		}
	}
	s.logger.Info("оборудование удалено", zap.Uint64("id", id), zap.Int("certificates", len(files)))
	return nil
}

// GetDueForCalibration: next_calibration_date <= начало сегодняшнего дня (UTC).
func (s *EquipmentService) GetDueForCalibration(ctx context.Context) ([]dto.EquipmentDTO, error) {
	now := s.now()
	list, err := s.repo.GetCalibrationCandidates(ctx, calibration.StartOfDay(now), true)
	if err != nil {
		return nil, err
	}
	return toEquipmentDTOs(list, now), nil
}

// GetOverdueCalibration: next_calibration_date строго раньше начала сегодняшнего дня (UTC).
func (s *EquipmentService) GetOverdueCalibration(ctx context.Context) ([]dto.EquipmentDTO, error) {
	now := s.now()
	list, err := s.repo.GetCalibrationCandidates(ctx, calibration.StartOfDay(now), false)
	if err != nil {
		return nil, err
	}
	return toEquipmentDTOs(list, now), nil
}
