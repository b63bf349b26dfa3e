package repositories

import (
	"context"
	"fmt"
	"time"

	"calibrify/internal/entities"
	db "calibrify/internal/infrastructure/bd"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const maintenanceRecordTable = "maintenance_records"

var maintenanceRecordColumns = []string{
	"mr.id", "mr.equipment_id", "mr.maintenance_date", "mr.maintenance_type", "mr.performed_by",
	"mr.description", "mr.parts_replaced", "mr.cost", "mr.notes", "mr.created_at",
}

var maintenanceRecordAllowedFilters = map[string]string{
	"equipment_id":     "mr.equipment_id",
	"maintenance_type": "mr.maintenance_type",
	"performed_by":     "mr.performed_by",
}

var maintenanceRecordAllowedSort = map[string]string{
	"id":               "mr.id",
	"maintenance_date": "mr.maintenance_date",
	"cost":             "mr.cost",
	"created_at":       "mr.created_at",
}

type MaintenanceRecordRepositoryInterface interface {
	GetMaintenanceRecords(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRecord, uint64, error)
	GetByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRecord, error)
	FindMaintenanceRecord(ctx context.Context, id uint64) (*entities.MaintenanceRecord, error)
	CreateMaintenanceRecord(ctx context.Context, record entities.MaintenanceRecord) (uint64, error)
	DeleteMaintenanceRecord(ctx context.Context, id uint64) error
}

type MaintenanceRecordRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRecordRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRecordRepositoryInterface {
	return &MaintenanceRecordRepository{storage: storage, logger: logger}
}

func scanMaintenanceRecord(row pgx.Row) (*entities.MaintenanceRecord, error) {
	var rec entities.MaintenanceRecord
	var createdAt time.Time

	err := row.Scan(
		&rec.ID, &rec.EquipmentID, &rec.MaintenanceDate, &rec.MaintenanceType, &rec.PerformedBy,
		&rec.Description, &rec.PartsReplaced, &rec.Cost, &rec.Notes, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = &createdAt
	return &rec, nil
}

func (r *MaintenanceRecordRepository) queryList(ctx context.Context, builder sq.SelectBuilder) ([]entities.MaintenanceRecord, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "выборка записей обслуживания")
	}
	defer rows.Close()

	list := make([]entities.MaintenanceRecord, 0)
	for rows.Next() {
		rec, err := scanMaintenanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи обслуживания: %w", err)
		}
		list = append(list, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "выборка записей обслуживания")
	}
	return list, nil
}

func (r *MaintenanceRecordRepository) GetMaintenanceRecords(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRecord, uint64, error) {
	base := db.Psql.Select().From(maintenanceRecordTable + " mr")
	base = db.ApplySearch(base, filter.Search, "mr.description", "mr.performed_by", "mr.parts_replaced")
	base = db.ApplyFilters(base, filter, maintenanceRecordAllowedFilters)

	countQuery, countArgs, err := base.Columns("COUNT(mr.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err, "подсчёт записей обслуживания")
	}
	if total == 0 {
		return []entities.MaintenanceRecord{}, 0, nil
	}

	builder := base.Columns(maintenanceRecordColumns...)
	builder = db.ApplySort(builder, filter, maintenanceRecordAllowedSort, "mr.maintenance_date DESC, mr.id DESC")
	builder = db.ApplyPagination(builder, filter)

	list, err := r.queryList(ctx, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *MaintenanceRecordRepository) GetByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRecord, error) {
	builder := db.Psql.Select(maintenanceRecordColumns...).
		From(maintenanceRecordTable+" mr").
		Where(sq.Eq{"mr.equipment_id": equipmentID}).
		OrderBy("mr.maintenance_date DESC", "mr.id DESC")
	return r.queryList(ctx, builder)
}

func (r *MaintenanceRecordRepository) FindMaintenanceRecord(ctx context.Context, id uint64) (*entities.MaintenanceRecord, error) {
	query, args, err := db.Psql.Select(maintenanceRecordColumns...).
		From(maintenanceRecordTable + " mr").
		Where(sq.Eq{"mr.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	rec, err := scanMaintenanceRecord(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "поиск записи обслуживания")
	}
	return rec, nil
}

func (r *MaintenanceRecordRepository) CreateMaintenanceRecord(ctx context.Context, rec entities.MaintenanceRecord) (uint64, error) {
	query, args, err := db.Psql.Insert(maintenanceRecordTable).
		Columns(
			"equipment_id", "maintenance_date", "maintenance_type", "performed_by",
			"description", "parts_replaced", "cost", "notes",
		).
		Values(
			rec.EquipmentID, rec.MaintenanceDate, string(rec.MaintenanceType), rec.PerformedBy,
			rec.Description, rec.PartsReplaced, rec.Cost, rec.Notes,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.logger.Error("ошибка создания записи обслуживания", zap.Uint64("equipment_id", rec.EquipmentID), zap.Error(err))
		return 0, mapPgError(err, "создание записи обслуживания")
	}
	return id, nil
}

func (r *MaintenanceRecordRepository) DeleteMaintenanceRecord(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM maintenance_records WHERE id = $1", id)
	if err != nil {
		return mapPgError(err, "удаление записи обслуживания")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
