package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"calibrify/internal/controllers"
	"calibrify/internal/repositories"
	"calibrify/internal/services"
	"calibrify/pkg/config"
	"calibrify/pkg/filestorage"
)

type Loggers struct {
	Main        *zap.Logger
	Equipment   *zap.Logger
	Calibration *zap.Logger
}

// InitRouter собирает репозитории, сервисы и контроллеры и вешает маршруты.
// redisClient может быть nil: тогда кеш оборудования отключён.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	fileStorage filestorage.FileStorageInterface,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	txManager := repositories.NewTxManager(dbConn)

	cacheRepo := repositories.NewNoopCacheRepository()
	if redisClient != nil {
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	}

	// --- 1. РЕПОЗИТОРИИ ---
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Equipment)
	calibrationRepo := repositories.NewCalibrationRecordRepository(dbConn, loggers.Calibration)
	maintenanceRepo := repositories.NewMaintenanceRecordRepository(dbConn, loggers.Main)
	dashboardRepo := repositories.NewDashboardRepository(dbConn, loggers.Main)

	// --- 2. СЕРВИСЫ ---
	equipmentService := services.NewEquipmentService(
		equipmentRepo, calibrationRepo, maintenanceRepo,
		txManager, cacheRepo, cfg.Redis.TTL, fileStorage, loggers.Equipment,
	)
	calibrationService := services.NewCalibrationRecordService(
		calibrationRepo, equipmentRepo, txManager, cacheRepo, fileStorage,
		cfg.Calibration.SyncEquipmentOnRecord, loggers.Calibration,
	)
	maintenanceService := services.NewMaintenanceRecordService(maintenanceRepo, equipmentRepo, loggers.Main)
	dashboardService := services.NewDashboardService(dashboardRepo, equipmentRepo, loggers.Main)
	reportService := services.NewReportService(equipmentService, loggers.Equipment)
	importService := services.NewEquipmentImportService(equipmentService, e.Validator, loggers.Equipment)

	// --- 3. РОУТЕРЫ ---
	runSystemRouter(e, healthChecks(dbConn, redisClient), loggers.Main)
	runEquipmentRouter(api, equipmentService, reportService, importService, loggers.Equipment)
	runCalibrationRecordRouter(api, calibrationService, loggers.Calibration)
	runMaintenanceRecordRouter(api, maintenanceService, loggers.Main)
	runDashboardRouter(api, dashboardService, loggers.Main)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

func healthChecks(dbConn *pgxpool.Pool, redisClient *redis.Client) map[string]controllers.HealthCheck {
	checks := map[string]controllers.HealthCheck{
		"database": dbConn.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
