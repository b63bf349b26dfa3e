package main

import (
	"context"
	"flag"
	"log"

	"calibrify/pkg/config"
	"calibrify/pkg/database/postgresql"
	"calibrify/seeders"

	"go.uber.org/zap"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runEquipment := flag.Bool("equipment", false, "Наполнить реестр демо-оборудованием")
	runRecords := flag.Bool("records", false, "Добавить записи о калибровке и обслуживании")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -equipment -records)")
	fresh := flag.Bool("fresh", false, "Очистить оборудование и журналы перед наполнением")

	flag.Parse()

	if !*runEquipment && !*runRecords && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -equipment")
		log.Println("  go run ./seeders/cmd/seed -all -fresh")
		log.Println("======================================================")
		return
	}

	ctx := context.Background()
	cfg := config.New()
	logger := zap.NewNop()

	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.RunMigrations(ctx, dbPool, logger); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}

	log.Println("======================================================")

	if *runAll || *runEquipment {
		seeders.SeedEquipment(dbPool, cfg, *fresh)
		log.Println("======================================================")
	}

	if *runAll || *runRecords {
		seeders.SeedRecords(dbPool, cfg)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
