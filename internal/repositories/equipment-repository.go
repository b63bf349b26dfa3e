package repositories

import (
	"context"
	"fmt"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/entities"
	db "calibrify/internal/infrastructure/bd"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const equipmentTable = "equipment"

var equipmentColumns = []string{
	"e.id", "e.name", "e.model_number", "e.serial_number", "e.manufacturer", "e.category",
	"e.location", "e.purchase_date", "e.last_calibration_date", "e.next_calibration_date",
	"e.calibration_interval_type", "e.calibration_interval_value", "e.status", "e.notes",
	"e.created_at", "e.updated_at",
}

var equipmentAllowedFilters = map[string]string{
	"status":                    "e.status",
	"manufacturer":              "e.manufacturer",
	"category":                  "e.category",
	"location":                  "e.location",
	"calibration_interval_type": "e.calibration_interval_type",
}

var equipmentAllowedSort = map[string]string{
	"id":                    "e.id",
	"name":                  "e.name",
	"serial_number":         "e.serial_number",
	"manufacturer":          "e.manufacturer",
	"category":              "e.category",
	"location":              "e.location",
	"purchase_date":         "e.purchase_date",
	"last_calibration_date": "e.last_calibration_date",
	"next_calibration_date": "e.next_calibration_date",
	"status":                "e.status",
	"created_at":            "e.created_at",
}

// Статусы, при которых оборудование вообще участвует в графике калибровки.
var scheduledStatuses = []string{string(calibration.StatusActive), string(calibration.StatusCalibrationDue)}

type EquipmentRepositoryInterface interface {
	GetEquipment(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindEquipmentForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindBySerialNumber(ctx context.Context, tx pgx.Tx, serial string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, tx pgx.Tx, equipment entities.Equipment) (uint64, error)
	UpdateEquipment(ctx context.Context, tx pgx.Tx, equipment entities.Equipment) error
	DeleteEquipment(ctx context.Context, id uint64) error
	GetCalibrationCandidates(ctx context.Context, cutoff time.Time, inclusive bool) ([]entities.Equipment, error)
	GetScheduleSnapshots(ctx context.Context) ([]entities.ScheduleSnapshot, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var last, next *time.Time
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&e.ID, &e.Name, &e.ModelNumber, &e.SerialNumber, &e.Manufacturer, &e.Category,
		&e.Location, &e.PurchaseDate, &last, &next,
		&e.IntervalUnit, &e.IntervalValue, &e.Status, &e.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.LastCalibrationDate = null.TimeFromPtr(last)
	e.NextCalibrationDate = null.TimeFromPtr(next)
	e.CreatedAt = &createdAt
	e.UpdatedAt = &updatedAt
	return &e, nil
}

func (r *EquipmentRepository) GetEquipment(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	base := db.Psql.Select().From(equipmentTable + " e")
	base = db.ApplySearch(base, filter.Search, "e.name", "e.model_number", "e.serial_number")
	base = db.ApplyFilters(base, filter, equipmentAllowedFilters)

	countQuery, countArgs, err := base.Columns("COUNT(e.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err, "подсчёт оборудования")
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	selectBuilder := base.Columns(equipmentColumns...)
	selectBuilder = db.ApplySort(selectBuilder, filter, equipmentAllowedSort, "e.name ASC")
	selectBuilder = db.ApplyPagination(selectBuilder, filter)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	list, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *EquipmentRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]entities.Equipment, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "выборка оборудования")
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		list = append(list, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "выборка оборудования")
	}
	return list, nil
}

func (r *EquipmentRepository) findOne(ctx context.Context, q Querier, builder sq.SelectBuilder) (*entities.Equipment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	e, err := scanEquipment(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "поиск оборудования")
	}
	return e, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	builder := db.Psql.Select(equipmentColumns...).From(equipmentTable + " e").Where(sq.Eq{"e.id": id})
	return r.findOne(ctx, r.storage, builder)
}

// FindEquipmentForUpdate блокирует строку до конца транзакции.
func (r *EquipmentRepository) FindEquipmentForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	builder := db.Psql.Select(equipmentColumns...).From(equipmentTable + " e").
		Where(sq.Eq{"e.id": id}).Suffix("FOR UPDATE")
	return r.findOne(ctx, querierFor(r.storage, tx), builder)
}

func (r *EquipmentRepository) FindBySerialNumber(ctx context.Context, tx pgx.Tx, serial string) (*entities.Equipment, error) {
	builder := db.Psql.Select(equipmentColumns...).From(equipmentTable + " e").Where(sq.Eq{"e.serial_number": serial})
	return r.findOne(ctx, querierFor(r.storage, tx), builder)
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	query, args, err := db.Psql.Insert(equipmentTable).
		Columns(
			"name", "model_number", "serial_number", "manufacturer", "category", "location",
			"purchase_date", "last_calibration_date", "next_calibration_date",
			"calibration_interval_type", "calibration_interval_value", "status", "notes",
		).
		Values(
			e.Name, e.ModelNumber, e.SerialNumber, e.Manufacturer, e.Category, e.Location,
			e.PurchaseDate, e.LastCalibrationDate.Ptr(), e.NextCalibrationDate.Ptr(),
			string(e.IntervalUnit), e.IntervalValue, string(e.Status), e.Notes,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	var id uint64
	if err := querierFor(r.storage, tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.logger.Error("ошибка создания оборудования", zap.String("serial_number", e.SerialNumber), zap.Error(err))
		return 0, mapPgError(err, "создание оборудования")
	}
	return id, nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, tx pgx.Tx, e entities.Equipment) error {
	query, args, err := db.Psql.Update(equipmentTable).
		SetMap(map[string]interface{}{
			"name":                       e.Name,
			"model_number":               e.ModelNumber,
			"serial_number":              e.SerialNumber,
			"manufacturer":               e.Manufacturer,
			"category":                   e.Category,
			"location":                   e.Location,
			"purchase_date":              e.PurchaseDate,
			"last_calibration_date":      e.LastCalibrationDate.Ptr(),
			"next_calibration_date":      e.NextCalibrationDate.Ptr(),
			"calibration_interval_type":  string(e.IntervalUnit),
			"calibration_interval_value": e.IntervalValue,
			"status":                     string(e.Status),
			"notes":                      e.Notes,
			"updated_at":                 sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	tag, err := querierFor(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("ошибка обновления оборудования", zap.Uint64("id", e.ID), zap.Error(err))
		return mapPgError(err, "обновление оборудования")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM equipment WHERE id = $1", id)
	if err != nil {
		return mapPgError(err, "удаление оборудования")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetCalibrationCandidates - оборудование из графика с датой следующей калибровки
// до cutoff (inclusive: <=, иначе <).
func (r *EquipmentRepository) GetCalibrationCandidates(ctx context.Context, cutoff time.Time, inclusive bool) ([]entities.Equipment, error) {
	var dateCond sq.Sqlizer = sq.Lt{"e.next_calibration_date": cutoff}
	if inclusive {
		dateCond = sq.LtOrEq{"e.next_calibration_date": cutoff}
	}

	query, args, err := db.Psql.Select(equipmentColumns...).
		From(equipmentTable+" e").
		Where(dateCond).
		Where(sq.Eq{"e.status": scheduledStatuses}).
		OrderBy("e.next_calibration_date ASC", "e.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	return r.queryList(ctx, query, args...)
}

func (r *EquipmentRepository) GetScheduleSnapshots(ctx context.Context) ([]entities.ScheduleSnapshot, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, last_calibration_date, next_calibration_date, status FROM equipment")
	if err != nil {
		return nil, mapPgError(err, "выборка расписаний")
	}
	defer rows.Close()

	list := make([]entities.ScheduleSnapshot, 0)
	for rows.Next() {
		var s entities.ScheduleSnapshot
		if err := rows.Scan(&s.ID, &s.LastCalibrationDate, &s.NextCalibrationDate, &s.Status); err != nil {
			return nil, fmt.Errorf("ошибка сканирования расписания: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "выборка расписаний")
	}
	return list, nil
}
