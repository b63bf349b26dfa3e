package validation

import (
	"regexp"
	"strings"

	"calibrify/internal/calibration"
	"calibrify/internal/entities"

	"github.com/go-playground/validator/v10"
)

var serialNumberRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/\-]*$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"interval_unit":    isIntervalUnit,
		"equipment_status": isEquipmentStatus,
		"maintenance_type": isMaintenanceType,
		"serial_number":    isSerialNumber,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isIntervalUnit(fl validator.FieldLevel) bool {
	return calibration.IntervalUnit(fl.Field().String()).Valid()
}

func isEquipmentStatus(fl validator.FieldLevel) bool {
	return calibration.Status(fl.Field().String()).Valid()
}

func isMaintenanceType(fl validator.FieldLevel) bool {
	return entities.MaintenanceType(fl.Field().String()).Valid()
}

func isSerialNumber(fl validator.FieldLevel) bool {
	return serialNumberRe.MatchString(strings.TrimSpace(fl.Field().String()))
}
