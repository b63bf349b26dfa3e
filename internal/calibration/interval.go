package calibration

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// IntervalUnit задаёт шаг периодичности калибровки.
type IntervalUnit string

const (
	IntervalHourly  IntervalUnit = "hourly"
	IntervalDaily   IntervalUnit = "daily"
	IntervalWeekly  IntervalUnit = "weekly"
	IntervalMonthly IntervalUnit = "monthly"
	IntervalYearly  IntervalUnit = "yearly"
)

const day = 24 * time.Hour

var (
	ErrInvalidIntervalUnit  = errors.New("неизвестная единица интервала калибровки")
	ErrInvalidIntervalValue = errors.New("интервал калибровки должен быть целым числом не меньше 1")
)

// monthly и yearly - приближение в 30 и 365 суток, не календарная арифметика.
var unitDurations = map[IntervalUnit]time.Duration{
	IntervalHourly:  time.Hour,
	IntervalDaily:   day,
	IntervalWeekly:  7 * day,
	IntervalMonthly: 30 * day,
	IntervalYearly:  365 * day,
}

func IntervalUnits() []IntervalUnit {
	return []IntervalUnit{IntervalHourly, IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly}
}

func (u IntervalUnit) Valid() bool {
	_, ok := unitDurations[u]
	return ok
}

func (u IntervalUnit) String() string { return string(u) }

// ParseIntervalUnit не подставляет значение по умолчанию: пустая или
// неизвестная единица всегда ошибка.
func ParseIntervalUnit(s string) (IntervalUnit, error) {
	u := IntervalUnit(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidIntervalUnit, s)
	}
	return u, nil
}

// IntervalDuration переводит пару (unit, value) в длительность.
func IntervalDuration(unit IntervalUnit, value int) (time.Duration, error) {
	step, ok := unitDurations[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIntervalUnit, string(unit))
	}
	if value < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidIntervalValue, value)
	}
	if int64(value) > math.MaxInt64/int64(step) {
		return 0, fmt.Errorf("%w: %d %s не помещается в допустимый диапазон", ErrInvalidIntervalValue, value, unit)
	}
	return time.Duration(value) * step, nil
}

// NextCalibrationDate возвращает base + интервал. Результат всегда строго позже base.
func NextCalibrationDate(base time.Time, unit IntervalUnit, value int) (time.Time, error) {
	d, err := IntervalDuration(unit, value)
	if err != nil {
		return time.Time{}, err
	}
	return base.Add(d), nil
}

// ValidateInterval проверяет пару без вычисления даты.
func ValidateInterval(unit IntervalUnit, value int) error {
	_, err := IntervalDuration(unit, value)
	return err
}
