package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calibrify/internal/repositories"
	"calibrify/internal/services"
	"calibrify/pkg/config"
	"calibrify/pkg/filestorage"
)

// serviceSet - сервисы, через которые идут сидеры, чтобы даты и статусы
// считались так же, как при работе через API.
type serviceSet struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	equipment     services.EquipmentServiceInterface
	calibration   services.CalibrationRecordServiceInterface
	maintenance   services.MaintenanceRecordServiceInterface
}

func newServiceSet(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (*serviceSet, error) {
	fileStorage, err := filestorage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	txManager := repositories.NewTxManager(db)
	cache := repositories.NewNoopCacheRepository()
	equipmentRepo := repositories.NewEquipmentRepository(db, logger)
	calibrationRepo := repositories.NewCalibrationRecordRepository(db, logger)
	maintenanceRepo := repositories.NewMaintenanceRecordRepository(db, logger)

	return &serviceSet{
		equipmentRepo: equipmentRepo,
		equipment: services.NewEquipmentService(
			equipmentRepo, calibrationRepo, maintenanceRepo, txManager, cache, cfg.Redis.TTL, fileStorage, logger,
		),
		calibration: services.NewCalibrationRecordService(
			calibrationRepo, equipmentRepo, txManager, cache, fileStorage, cfg.Calibration.SyncEquipmentOnRecord, logger,
		),
		maintenance: services.NewMaintenanceRecordService(maintenanceRepo, equipmentRepo, logger),
	}, nil
}

// SeedEquipment наполняет реестр демо-оборудованием. fresh очищает таблицы перед наполнением.
func SeedEquipment(db *pgxpool.Pool, cfg *config.Config, fresh bool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения оборудования...")

	if fresh {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE equipment RESTART IDENTITY CASCADE"); err != nil {
			log.Fatalf("❌ Ошибка очистки таблицы оборудования: %v", err)
		}
	}

	svc, err := newServiceSet(ctx, db, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации сервисов: %v", err)
	}
	if err := seedEquipment(ctx, svc); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Наполнение оборудования завершено!")
}

// SeedRecords добавляет записи о калибровке и обслуживании к демо-оборудованию.
func SeedRecords(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения журналов калибровки и обслуживания...")

	svc, err := newServiceSet(ctx, db, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации сервисов: %v", err)
	}
	if err := seedCalibrationRecords(ctx, svc); err != nil {
		log.Fatalf("❌ Ошибка наполнения записей о калибровке: %v", err)
	}
	if err := seedMaintenanceRecords(ctx, svc); err != nil {
		log.Fatalf("❌ Ошибка наполнения записей об обслуживании: %v", err)
	}
	log.Println("✅ Наполнение журналов завершено!")
}
