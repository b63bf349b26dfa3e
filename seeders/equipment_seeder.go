package seeders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"

	"calibrify/internal/dto"
	"calibrify/pkg/types"
)

const day = 24 * time.Hour

func seedEquipment(ctx context.Context, svc *serviceSet) error {
	log.Println("  - Наполнение таблицы 'equipment'...")
	now := time.Now().UTC()

	var created, updated int
	for _, e := range equipmentData {
		purchase, err := types.ParseDate(e.PurchaseDate)
		if err != nil {
			return fmt.Errorf("%s: %w", e.SerialNumber, err)
		}
		value := types.FlexInt(e.IntervalValue)

		createDTO := dto.CreateEquipmentDTO{
			Name:          e.Name,
			ModelNumber:   e.ModelNumber,
			SerialNumber:  e.SerialNumber,
			Manufacturer:  e.Manufacturer,
			Category:      e.Category,
			Location:      e.Location,
			PurchaseDate:  &purchase,
			IntervalUnit:  e.IntervalUnit,
			IntervalValue: &value,
			Status:        e.Status,
			Notes:         e.Notes,
		}
		if e.LastDaysAgo > 0 {
			createDTO.LastCalibrationDate = null.TimeFrom(now.Add(-time.Duration(e.LastDaysAgo) * day))
		}

		isNew, err := svc.equipment.UpsertBySerialNumber(ctx, createDTO)
		if err != nil {
			return fmt.Errorf("%s: %w", e.SerialNumber, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	log.Printf("    создано: %d, обновлено: %d", created, updated)
	return nil
}

func seedCalibrationRecords(ctx context.Context, svc *serviceSet) error {
	log.Println("  - Наполнение таблицы 'calibration_records'...")
	now := time.Now().UTC()

	for _, r := range calibrationData {
		equipment, err := svc.equipmentRepo.FindBySerialNumber(ctx, nil, r.SerialNumber)
		if err != nil {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: оборудование '%s' не найдено, пропускаем запись.", r.SerialNumber)
			continue
		}

		date := types.NewDate(now.Add(-time.Duration(r.DaysAgo) * day))
		_, err = svc.calibration.CreateCalibrationRecord(ctx, dto.CreateCalibrationRecordDTO{
			EquipmentID:         equipment.ID,
			CalibrationDate:     &date,
			CalibratedBy:        r.CalibratedBy,
			CertificateNumber:   r.Certificate,
			CalibrationStandard: r.Standard,
			MeasurementPoints:   json.RawMessage(r.Points),
			Results:             json.RawMessage(r.Results),
		}, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Certificate, err)
		}
	}
	return nil
}

func seedMaintenanceRecords(ctx context.Context, svc *serviceSet) error {
	log.Println("  - Наполнение таблицы 'maintenance_records'...")
	now := time.Now().UTC()

	for _, r := range maintenanceData {
		equipment, err := svc.equipmentRepo.FindBySerialNumber(ctx, nil, r.SerialNumber)
		if err != nil {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: оборудование '%s' не найдено, пропускаем запись.", r.SerialNumber)
			continue
		}

		createDTO := dto.CreateMaintenanceRecordDTO{
			EquipmentID:     equipment.ID,
			MaintenanceType: r.Type,
			PerformedBy:     r.PerformedBy,
			Description:     r.Description,
			PartsReplaced:   r.PartsReplaced,
		}
		date := types.NewDate(now.Add(-time.Duration(r.DaysAgo) * day))
		createDTO.MaintenanceDate = &date
		if r.Cost != "" {
			cost, err := decimal.NewFromString(r.Cost)
			if err != nil {
				return fmt.Errorf("%s: %w", r.SerialNumber, err)
			}
			createDTO.Cost = decimal.NewNullDecimal(cost)
		}

		if _, err := svc.maintenance.CreateMaintenanceRecord(ctx, createDTO); err != nil {
			return fmt.Errorf("%s: %w", r.SerialNumber, err)
		}
	}
	return nil
}
