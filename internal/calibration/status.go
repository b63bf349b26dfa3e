package calibration

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive             Status = "active"
	StatusCalibrationDue     Status = "calibration_due"
	StatusCalibrationOverdue Status = "calibration_overdue"
	StatusMaintenance        Status = "maintenance"
	StatusRetired            Status = "retired"
)

var ErrInvalidStatus = errors.New("неизвестный статус оборудования")

// WarningWindow - за сколько до next_calibration_date статус становится calibration_due.
const WarningWindow = 7 * day

var statusDisplay = map[Status]string{
	StatusActive:             "Active",
	StatusCalibrationDue:     "Calibration Due",
	StatusCalibrationOverdue: "Calibration Overdue",
	StatusMaintenance:        "Maintenance",
	StatusRetired:            "Retired",
}

func Statuses() []Status {
	return []Status{StatusActive, StatusCalibrationDue, StatusCalibrationOverdue, StatusMaintenance, StatusRetired}
}

func (s Status) Valid() bool {
	_, ok := statusDisplay[s]
	return ok
}

func (s Status) Display() string { return statusDisplay[s] }

// Sticky - статусы, которые задаются вручную и не перетираются датами.
func (s Status) Sticky() bool {
	return s == StatusRetired || s == StatusMaintenance
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// DeriveStatus вычисляет отображаемый статус. Первое совпавшее правило побеждает.
func DeriveStatus(now time.Time, last, next *time.Time, current Status) Status {
	switch {
	case current == StatusRetired:
		return StatusRetired
	case current == StatusMaintenance:
		return StatusMaintenance
	case last == nil, next == nil:
		return StatusCalibrationOverdue
	}

	warningThreshold := next.Add(-WarningWindow)
	switch {
	case now.After(*next):
		return StatusCalibrationOverdue
	case now.After(warningThreshold):
		return StatusCalibrationDue
	default:
		return StatusActive
	}
}

// Schedule - часть оборудования, от которой зависит расписание калибровки.
type Schedule struct {
	LastCalibrationDate *time.Time
	NextCalibrationDate *time.Time
	IntervalUnit        IntervalUnit
	IntervalValue       int
	Status              Status
}

// Recompute выполняется перед каждой записью оборудования: сначала
// выводится next_calibration_date (если её нет, а last есть), затем статус,
// который уже видит свежую дату.
func Recompute(now time.Time, s Schedule) (Schedule, error) {
	if err := ValidateInterval(s.IntervalUnit, s.IntervalValue); err != nil {
		return s, err
	}

	out := s
	if out.NextCalibrationDate == nil && out.LastCalibrationDate != nil {
		next, err := NextCalibrationDate(*out.LastCalibrationDate, out.IntervalUnit, out.IntervalValue)
		if err != nil {
			return s, err
		}
		out.NextCalibrationDate = &next
	}

	out.Status = DeriveStatus(now, out.LastCalibrationDate, out.NextCalibrationDate, out.Status)
	return out, nil
}

// StartOfDay - полночь UTC дня, в который попадает t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
