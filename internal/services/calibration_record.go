package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"calibrify/config"
	"calibrify/internal/calibration"
	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/filestorage"
	"calibrify/pkg/metrics"
	"calibrify/pkg/types"
	"calibrify/pkg/validation"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const certificateUploadContext = "calibration_certificate"

type CalibrationRecordServiceInterface interface {
	GetCalibrationRecords(ctx context.Context, filter types.Filter) ([]dto.CalibrationRecordDTO, uint64, error)
	FindCalibrationRecord(ctx context.Context, id uint64) (*dto.CalibrationRecordDTO, error)
	CreateCalibrationRecord(ctx context.Context, createDTO dto.CreateCalibrationRecordDTO, certificate *multipart.FileHeader) (*dto.CalibrationRecordDTO, error)
	GetCertificateURL(ctx context.Context, id uint64) (string, error)
	DeleteCalibrationRecord(ctx context.Context, id uint64) error
}

type CalibrationRecordService struct {
	repo          repositories.CalibrationRecordRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	txManager     repositories.TxManagerInterface
	cache         repositories.CacheRepositoryInterface
	fileStorage   filestorage.FileStorageInterface
	// syncEquipment: новая запись сдвигает last_calibration_date оборудования.
	syncEquipment bool
	logger        *zap.Logger
	now           func() time.Time
}

func NewCalibrationRecordService(
	repo repositories.CalibrationRecordRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cache repositories.CacheRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	syncEquipment bool,
	logger *zap.Logger,
) *CalibrationRecordService {
	return &CalibrationRecordService{
		repo:          repo,
		equipmentRepo: equipmentRepo,
		txManager:     txManager,
		cache:         cache,
		fileStorage:   fileStorage,
		syncEquipment: syncEquipment,
		logger:        logger,
		now:           time.Now,
	}
}

func toCalibrationRecordDTO(rec *entities.CalibrationRecord) dto.CalibrationRecordDTO {
	return dto.CalibrationRecordDTO{
		ID:                  rec.ID,
		EquipmentID:         rec.EquipmentID,
		CalibrationDate:     types.NewDate(rec.CalibrationDate),
		CalibratedBy:        rec.CalibratedBy,
		CertificateNumber:   rec.CertificateNumber,
		CertificateFile:     rec.CertificateFile.Ptr(),
		CalibrationStandard: rec.CalibrationStandard,
		MeasurementPoints:   rec.MeasurementPoints,
		Results:             rec.Results,
		Notes:               rec.Notes,
		CreatedAt:           rec.CreatedAt,
	}
}

func toCalibrationRecordDTOs(list []entities.CalibrationRecord) []dto.CalibrationRecordDTO {
	res := make([]dto.CalibrationRecordDTO, 0, len(list))
	for i := range list {
		res = append(res, toCalibrationRecordDTO(&list[i]))
	}
	return res
}

// jsonDocument проверяет, что поле содержит JSON-значение, а не null.
func jsonDocument(field string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperrors.NewInvalidInputError(field, "обязательное поле")
	}
	if !json.Valid(trimmed) {
		return nil, apperrors.NewInvalidInputError(field, "некорректный JSON")
	}
	return json.RawMessage(trimmed), nil
}

func (s *CalibrationRecordService) GetCalibrationRecords(ctx context.Context, filter types.Filter) ([]dto.CalibrationRecordDTO, uint64, error) {
	list, total, err := s.repo.GetCalibrationRecords(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения записей калибровки", zap.Error(err))
		return nil, 0, err
	}
	return toCalibrationRecordDTOs(list), total, nil
}

func (s *CalibrationRecordService) FindCalibrationRecord(ctx context.Context, id uint64) (*dto.CalibrationRecordDTO, error) {
	rec, err := s.repo.FindCalibrationRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toCalibrationRecordDTO(rec)
	return &res, nil
}

func (s *CalibrationRecordService) saveCertificate(ctx context.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", apperrors.NewInvalidInputError("certificate", "не удалось прочитать файл")
	}
	defer file.Close()

	if err := validation.ValidateFile(header, file, certificateUploadContext); err != nil {
		return "", err
	}
	return s.fileStorage.Save(ctx, file, header.Filename, config.UploadContexts[certificateUploadContext].PathPrefix)
}

func (s *CalibrationRecordService) CreateCalibrationRecord(
	ctx context.Context,
	createDTO dto.CreateCalibrationRecordDTO,
	certificate *multipart.FileHeader,
) (*dto.CalibrationRecordDTO, error) {
	if createDTO.CalibrationDate == nil {
		return nil, apperrors.NewInvalidInputError("calibration_date", "обязательное поле")
	}
	points, err := jsonDocument("measurement_points", createDTO.MeasurementPoints)
	if err != nil {
		return nil, err
	}
	results, err := jsonDocument("results", createDTO.Results)
	if err != nil {
		return nil, err
	}

	rec := entities.CalibrationRecord{
		EquipmentID:         createDTO.EquipmentID,
		CalibrationDate:     createDTO.CalibrationDate.Time,
		CalibratedBy:        strings.TrimSpace(createDTO.CalibratedBy),
		CertificateNumber:   strings.TrimSpace(createDTO.CertificateNumber),
		CalibrationStandard: strings.TrimSpace(createDTO.CalibrationStandard),
		MeasurementPoints:   points,
		Results:             results,
		Notes:               createDTO.Notes,
	}

	if certificate != nil {
		path, err := s.saveCertificate(ctx, certificate)
		if err != nil {
			return nil, err
		}
		rec.CertificateFile = null.StringFrom(path)
	}

	var id uint64
	synced := false
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepo.FindEquipmentForUpdate(ctx, tx, rec.EquipmentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewInvalidInputError("equipment_id", "оборудование %d не найдено", rec.EquipmentID)
			}
			return err
		}

		id, err = s.repo.CreateCalibrationRecord(ctx, tx, rec)
		if err != nil {
			return err
		}

		if !s.syncEquipment {
			return nil
		}
		synced, err = s.syncSchedule(equipment, rec.CalibrationDate)
		if err != nil || !synced {
			return err
		}
		return s.equipmentRepo.UpdateEquipment(ctx, tx, *equipment)
	})
	if err != nil {
		if rec.CertificateFile.Valid {
			if delErr := s.fileStorage.Delete(ctx, rec.CertificateFile.String); delErr != nil {
				s.logger.Warn("не удалось удалить файл сертификата", zap.String("file", rec.CertificateFile.String), zap.Error(delErr))
			}
		}
		return nil, err
	}

	if synced {
		if err := s.cache.Del(ctx, equipmentCacheKey(rec.EquipmentID)); err != nil {
			s.logger.Warn("не удалось сбросить кеш", zap.Uint64("equipment_id", rec.EquipmentID), zap.Error(err))
		}
	}
	metrics.CalibrationRecordsCreated.Inc()
	s.logger.Info("запись калибровки создана",
		zap.Uint64("id", id),
		zap.Uint64("equipment_id", rec.EquipmentID),
		zap.Bool("equipment_synced", synced),
	)
	return s.FindCalibrationRecord(ctx, id)
}

// syncSchedule сдвигает last_calibration_date на дату калибровки, если она новее,
// и пересчитывает next и статус. retired и maintenance при этом сохраняются.
func (s *CalibrationRecordService) syncSchedule(e *entities.Equipment, calibrationDate time.Time) (bool, error) {
	last := calibration.StartOfDay(calibrationDate)
	if e.LastCalibrationDate.Valid && !last.After(e.LastCalibrationDate.Time) {
		return false, nil
	}

	e.LastCalibrationDate = null.TimeFrom(last)
	e.NextCalibrationDate = null.Time{}

	schedule, err := calibration.Recompute(s.now(), e.Schedule())
	if err != nil {
		return false, err
	}
	e.ApplySchedule(schedule)
	metrics.StatusDerivationsTotal.WithLabelValues(string(e.Status)).Inc()
	return true, nil
}

func (s *CalibrationRecordService) GetCertificateURL(ctx context.Context, id uint64) (string, error) {
	rec, err := s.repo.FindCalibrationRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if !rec.CertificateFile.Valid {
		return "", apperrors.ErrNotFound
	}
	return s.fileStorage.URL(ctx, rec.CertificateFile.String)
}

// DeleteCalibrationRecord удаляет ошибочную запись. Расписание оборудования не откатывается.
func (s *CalibrationRecordService) DeleteCalibrationRecord(ctx context.Context, id uint64) error {
	rec, err := s.repo.FindCalibrationRecord(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCalibrationRecord(ctx, id); err != nil {
		return err
	}
	if rec.CertificateFile.Valid {
		if err := s.fileStorage.Delete(ctx, rec.CertificateFile.String); err != nil {
			s.logger.Warn("не удалось удалить файл сертификата", zap.String("file", rec.CertificateFile.String), zap.Error(err))
		}
	}
	s.logger.Info("запись калибровки удалена", zap.Uint64("id", id), zap.Uint64("equipment_id", rec.EquipmentID))
	return nil
}
