package repositories

import (
	"context"
	"fmt"
	"time"

	"calibrify/internal/entities"
	db "calibrify/internal/infrastructure/bd"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DashboardRepositoryInterface interface {
	GetRecordActivity(ctx context.Context, since time.Time) (*entities.RecordActivity, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

// GetRecordActivity - записи калибровки и обслуживания начиная с since
// и суммарная стоимость обслуживания за всё время.
func (r *DashboardRepository) GetRecordActivity(ctx context.Context, since time.Time) (*entities.RecordActivity, error) {
	calibrations := db.Psql.Select("COUNT(*)").From(calibrationRecordTable).
		Where(sq.GtOrEq{"calibration_date": since})
	maintenances := db.Psql.Select("COUNT(*)").From(maintenanceRecordTable).
		Where(sq.GtOrEq{"maintenance_date": since})

	calQuery, calArgs, err := calibrations.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	mntQuery, mntArgs, err := maintenances.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	var activity entities.RecordActivity
	if err := r.storage.QueryRow(ctx, calQuery, calArgs...).Scan(&activity.CalibrationRecords); err != nil {
		r.logger.Error("ошибка подсчёта калибровок", zap.Error(err))
		return nil, mapPgError(err, "подсчёт калибровок")
	}
	if err := r.storage.QueryRow(ctx, mntQuery, mntArgs...).Scan(&activity.MaintenanceRecords); err != nil {
		r.logger.Error("ошибка подсчёта обслуживаний", zap.Error(err))
		return nil, mapPgError(err, "подсчёт обслуживаний")
	}

	var cost string
	err = r.storage.QueryRow(ctx, "SELECT COALESCE(SUM(cost), 0)::text FROM maintenance_records").Scan(&cost)
	if err != nil {
		return nil, mapPgError(err, "сумма обслуживания")
	}
	activity.MaintenanceCost, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("некорректная сумма обслуживания %q: %w", cost, err)
	}
	return &activity, nil
}
