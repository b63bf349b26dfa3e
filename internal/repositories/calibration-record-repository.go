package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

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

const calibrationRecordTable = "calibration_records"

var calibrationRecordColumns = []string{
	"cr.id", "cr.equipment_id", "cr.calibration_date", "cr.calibrated_by", "cr.certificate_number",
	"cr.certificate_file", "cr.calibration_standard", "cr.measurement_points", "cr.results",
	"cr.notes", "cr.created_at",
}

var calibrationRecordAllowedFilters = map[string]string{
	"equipment_id":       "cr.equipment_id",
	"calibrated_by":      "cr.calibrated_by",
	"certificate_number": "cr.certificate_number",
}

var calibrationRecordAllowedSort = map[string]string{
	"id":               "cr.id",
	"calibration_date": "cr.calibration_date",
	"created_at":       "cr.created_at",
}

type CalibrationRecordRepositoryInterface interface {
	GetCalibrationRecords(ctx context.Context, filter types.Filter) ([]entities.CalibrationRecord, uint64, error)
	GetByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.CalibrationRecord, error)
	FindCalibrationRecord(ctx context.Context, id uint64) (*entities.CalibrationRecord, error)
	CreateCalibrationRecord(ctx context.Context, tx pgx.Tx, record entities.CalibrationRecord) (uint64, error)
	DeleteCalibrationRecord(ctx context.Context, id uint64) error
	GetCertificateFiles(ctx context.Context, equipmentID uint64) ([]string, error)
}

type CalibrationRecordRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCalibrationRecordRepository(storage *pgxpool.Pool, logger *zap.Logger) CalibrationRecordRepositoryInterface {
	return &CalibrationRecordRepository{storage: storage, logger: logger}
}

func scanCalibrationRecord(row pgx.Row) (*entities.CalibrationRecord, error) {
	var rec entities.CalibrationRecord
	var file *string
	var points, results []byte
	var createdAt time.Time

	err := row.Scan(
		&rec.ID, &rec.EquipmentID, &rec.CalibrationDate, &rec.CalibratedBy, &rec.CertificateNumber,
		&file, &rec.CalibrationStandard, &points, &results, &rec.Notes, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CertificateFile = null.StringFromPtr(file)
	rec.MeasurementPoints = json.RawMessage(points)
	rec.Results = json.RawMessage(results)
	rec.CreatedAt = &createdAt
	return &rec, nil
}

func (r *CalibrationRecordRepository) queryList(ctx context.Context, builder sq.SelectBuilder) ([]entities.CalibrationRecord, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "выборка записей калибровки")
	}
	defer rows.Close()

	list := make([]entities.CalibrationRecord, 0)
	for rows.Next() {
		rec, err := scanCalibrationRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи калибровки: %w", err)
		}
		list = append(list, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "выборка записей калибровки")
	}
	return list, nil
}

func (r *CalibrationRecordRepository) GetCalibrationRecords(ctx context.Context, filter types.Filter) ([]entities.CalibrationRecord, uint64, error) {
	base := db.Psql.Select().From(calibrationRecordTable + " cr")
	base = db.ApplySearch(base, filter.Search, "cr.certificate_number", "cr.calibrated_by", "cr.calibration_standard")
	base = db.ApplyFilters(base, filter, calibrationRecordAllowedFilters)

	countQuery, countArgs, err := base.Columns("COUNT(cr.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err, "подсчёт записей калибровки")
	}
	if total == 0 {
		return []entities.CalibrationRecord{}, 0, nil
	}

	builder := base.Columns(calibrationRecordColumns...)
	builder = db.ApplySort(builder, filter, calibrationRecordAllowedSort, "cr.calibration_date DESC, cr.id DESC")
	builder = db.ApplyPagination(builder, filter)

	list, err := r.queryList(ctx, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *CalibrationRecordRepository) GetByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.CalibrationRecord, error) {
	builder := db.Psql.Select(calibrationRecordColumns...).
		From(calibrationRecordTable+" cr").
		Where(sq.Eq{"cr.equipment_id": equipmentID}).
		OrderBy("cr.calibration_date DESC", "cr.id DESC")
	return r.queryList(ctx, builder)
}

func (r *CalibrationRecordRepository) FindCalibrationRecord(ctx context.Context, id uint64) (*entities.CalibrationRecord, error) {
	query, args, err := db.Psql.Select(calibrationRecordColumns...).
		From(calibrationRecordTable + " cr").
		Where(sq.Eq{"cr.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	rec, err := scanCalibrationRecord(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "поиск записи калибровки")
	}
	return rec, nil
}

func (r *CalibrationRecordRepository) CreateCalibrationRecord(ctx context.Context, tx pgx.Tx, rec entities.CalibrationRecord) (uint64, error) {
	query, args, err := db.Psql.Insert(calibrationRecordTable).
		Columns(
			"equipment_id", "calibration_date", "calibrated_by", "certificate_number", "certificate_file",
			"calibration_standard", "measurement_points", "results", "notes",
		).
		Values(
			rec.EquipmentID, rec.CalibrationDate, rec.CalibratedBy, rec.CertificateNumber, rec.CertificateFile.Ptr(),
			rec.CalibrationStandard, string(rec.MeasurementPoints), string(rec.Results), rec.Notes,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	var id uint64
	if err := querierFor(r.storage, tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.logger.Error("ошибка создания записи калибровки", zap.Uint64("equipment_id", rec.EquipmentID), zap.Error(err))
		return 0, mapPgError(err, "создание записи калибровки")
	}
	return id, nil
}

func (r *CalibrationRecordRepository) DeleteCalibrationRecord(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM calibration_records WHERE id = $1", id)
	if err != nil {
		return mapPgError(err, "удаление записи калибровки")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetCertificateFiles - пути сертификатов оборудования, чтобы подчистить их после каскадного удаления.
func (r *CalibrationRecordRepository) GetCertificateFiles(ctx context.Context, equipmentID uint64) ([]string, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT certificate_file FROM calibration_records WHERE equipment_id = $1 AND certificate_file IS NOT NULL",
		equipmentID)
	if err != nil {
		return nil, mapPgError(err, "выборка сертификатов")
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "выборка сертификатов")
	}
	return files, nil
}
