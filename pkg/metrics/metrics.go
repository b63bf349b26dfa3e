// Package metrics - Prometheus-метрики сервиса калибровки.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EquipmentWritesTotal - создание, обновление, удаление оборудования.
	EquipmentWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calibrify",
			Subsystem: "equipment",
			Name:      "writes_total",
			Help:      "Total number of equipment writes by operation",
		},
		[]string{"operation"},
	)

	// StatusDerivationsTotal - результаты пересчёта статуса при записи.
	StatusDerivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calibrify",
			Subsystem: "calibration",
			Name:      "status_derivations_total",
			Help:      "Total number of status derivations on write by resulting status",
		},
		[]string{"status"},
	)

	CalibrationRecordsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "calibrify",
			Subsystem: "calibration",
			Name:      "records_created_total",
			Help:      "Total number of calibration records created",
		},
	)

	// ImportRowsTotal - строки импорта xlsx по исходу: created, updated, failed.
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calibrify",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of imported spreadsheet rows by outcome",
		},
		[]string{"outcome"},
	)
)
