// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"calibrify/internal/routes"
	"calibrify/pkg/config"
	"calibrify/pkg/database/postgresql"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/filestorage"
	applogger "calibrify/pkg/logger"
	appmiddleware "calibrify/pkg/middleware"
	"calibrify/pkg/utils"
	"calibrify/pkg/validation"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))
	e.Use(appmiddleware.InjectLogger(logger))
	e.Use(appmiddleware.RequestLogger(logger))

	e.Validator = validation.New()

	// 3. База данных и миграции
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.RunMigrations(ctx, dbConn, logger); err != nil {
		logger.Fatal("ошибка применения миграций", zap.Error(err))
	}

	// 4. Redis - необязателен, без адреса кеш оборудования выключен
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		defer redisClient.Close()
		logger.Info("✅ Подключено к Redis", zap.String("address", cfg.Redis.Address))
	} else {
		logger.Warn("REDIS_ADDRESS не задан, кеш отключён")
	}

	// 5. Хранилище сертификатов
	fileStorage, err := filestorage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	if cfg.Storage.Driver != filestorage.DriverS3 {
		absPath, err := filepath.Abs(cfg.Storage.LocalPath)
		if err != nil {
			logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
		}
		e.Static(strings.TrimSuffix(filestorage.URLPrefix, "/"), absPath)
	}

	// 6. Роуты
	routes.InitRouter(e, dbConn, redisClient, fileStorage, &routes.Loggers{
		Main:        logger,
		Equipment:   logger.Named("equipment"),
		Calibration: logger.Named("calibration"),
	}, cfg)

	// 7. Запуск и плавная остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
}
