package services

import (
	"context"
	"errors"
	"strings"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type MaintenanceRecordServiceInterface interface {
	GetMaintenanceRecords(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRecordDTO, uint64, error)
	FindMaintenanceRecord(ctx context.Context, id uint64) (*dto.MaintenanceRecordDTO, error)
	CreateMaintenanceRecord(ctx context.Context, createDTO dto.CreateMaintenanceRecordDTO) (*dto.MaintenanceRecordDTO, error)
	DeleteMaintenanceRecord(ctx context.Context, id uint64) error
}

type MaintenanceRecordService struct {
	repo          repositories.MaintenanceRecordRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	logger        *zap.Logger
}

func NewMaintenanceRecordService(
	repo repositories.MaintenanceRecordRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	logger *zap.Logger,
) *MaintenanceRecordService {
	return &MaintenanceRecordService{repo: repo, equipmentRepo: equipmentRepo, logger: logger}
}

func toMaintenanceRecordDTO(rec *entities.MaintenanceRecord) dto.MaintenanceRecordDTO {
	return dto.MaintenanceRecordDTO{
		ID:              rec.ID,
		EquipmentID:     rec.EquipmentID,
		MaintenanceDate: types.NewDate(rec.MaintenanceDate),
		MaintenanceType: string(rec.MaintenanceType),
		PerformedBy:     rec.PerformedBy,
		Description:     rec.Description,
		PartsReplaced:   rec.PartsReplaced,
		Cost:            rec.Cost,
		Notes:           rec.Notes,
		CreatedAt:       rec.CreatedAt,
	}
}

func toMaintenanceRecordDTOs(list []entities.MaintenanceRecord) []dto.MaintenanceRecordDTO {
	res := make([]dto.MaintenanceRecordDTO, 0, len(list))
	for i := range list {
		res = append(res, toMaintenanceRecordDTO(&list[i]))
	}
	return res
}

func (s *MaintenanceRecordService) GetMaintenanceRecords(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRecordDTO, uint64, error) {
	list, total, err := s.repo.GetMaintenanceRecords(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения записей обслуживания", zap.Error(err))
		return nil, 0, err
	}
	return toMaintenanceRecordDTOs(list), total, nil
}

func (s *MaintenanceRecordService) FindMaintenanceRecord(ctx context.Context, id uint64) (*dto.MaintenanceRecordDTO, error) {
	rec, err := s.repo.FindMaintenanceRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toMaintenanceRecordDTO(rec)
	return &res, nil
}

// maxMaintenanceCost - предел колонки NUMERIC(10,2).
var maxMaintenanceCost = decimal.RequireFromString("99999999.99")

func (s *MaintenanceRecordService) CreateMaintenanceRecord(ctx context.Context, createDTO dto.CreateMaintenanceRecordDTO) (*dto.MaintenanceRecordDTO, error) {
	if createDTO.MaintenanceDate == nil {
		return nil, apperrors.NewInvalidInputError("maintenance_date", "обязательное поле")
	}
	maintenanceType := entities.MaintenanceType(strings.ToLower(strings.TrimSpace(createDTO.MaintenanceType)))
	if !maintenanceType.Valid() {
		return nil, apperrors.NewInvalidInputError("maintenance_type", "неизвестный тип обслуживания %q", createDTO.MaintenanceType)
	}
	if createDTO.Cost.Valid && createDTO.Cost.Decimal.IsNegative() {
		return nil, apperrors.NewInvalidInputError("cost", "стоимость не может быть отрицательной")
	}
	if createDTO.Cost.Valid && createDTO.Cost.Decimal.Round(2).GreaterThan(maxMaintenanceCost) {
		return nil, apperrors.NewInvalidInputError("cost", "стоимость не может превышать %s", maxMaintenanceCost.StringFixed(2))
	}

	if _, err := s.equipmentRepo.FindEquipment(ctx, createDTO.EquipmentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("equipment_id", "оборудование %d не найдено", createDTO.EquipmentID)
		}
		return nil, err
	}

	rec := entities.MaintenanceRecord{
		EquipmentID:     createDTO.EquipmentID,
		MaintenanceDate: createDTO.MaintenanceDate.Time,
		MaintenanceType: maintenanceType,
		PerformedBy:     strings.TrimSpace(createDTO.PerformedBy),
		Description:     createDTO.Description,
		PartsReplaced:   createDTO.PartsReplaced,
		Cost:            createDTO.Cost,
		Notes:           createDTO.Notes,
	}
	if rec.Cost.Valid {
		rec.Cost.Decimal = rec.Cost.Decimal.Round(2)
	}

	id, err := s.repo.CreateMaintenanceRecord(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("запись обслуживания создана",
		zap.Uint64("id", id),
		zap.Uint64("equipment_id", rec.EquipmentID),
		zap.String("type", string(rec.MaintenanceType)),
	)
	return s.FindMaintenanceRecord(ctx, id)
}

func (s *MaintenanceRecordService) DeleteMaintenanceRecord(ctx context.Context, id uint64) error {
	if err := s.repo.DeleteMaintenanceRecord(ctx, id); err != nil {
		return err
	}
	s.logger.Info("запись обслуживания удалена", zap.Uint64("id", id))
	return nil
}
