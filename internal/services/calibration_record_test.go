package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/dto"
	"calibrify/internal/entities"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type calibrationFixture struct {
	equipment    *fakeEquipmentRepo
	calibrations *fakeCalibrationRepo
	cache        *fakeCache
	storage      *fakeStorage
	service      *CalibrationRecordService
}

func newCalibrationFixture(sync bool) *calibrationFixture {
	f := &calibrationFixture{
		equipment:    newFakeEquipmentRepo(),
		calibrations: newFakeCalibrationRepo(),
		cache:        newFakeCache(),
		storage:      newFakeStorage(),
	}
	f.service = NewCalibrationRecordService(f.calibrations, f.equipment, fakeTxManager{}, f.cache, f.storage, sync, zap.NewNop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func (f *calibrationFixture) seed(t *testing.T, e entities.Equipment) uint64 {
	t.Helper()
	if e.IntervalUnit == "" {
		e.IntervalUnit = calibration.IntervalMonthly
		e.IntervalValue = 1
	}
	if e.SerialNumber == "" {
		e.SerialNumber = "SN-CAL"
	}
	id, err := f.equipment.CreateEquipment(context.Background(), nil, e)
	require.NoError(t, err)
	return id
}

func newRecordDTO(equipmentID uint64, date time.Time) dto.CreateCalibrationRecordDTO {
	d := types.NewDate(date)
	return dto.CreateCalibrationRecordDTO{
		EquipmentID:         equipmentID,
		CalibrationDate:     &d,
		CalibratedBy:        "Иванов И.И.",
		CertificateNumber:   "CERT-2024-001",
		CalibrationStandard: "ГОСТ 8.027",
		MeasurementPoints:   json.RawMessage(`[{"nominal": 10, "unit": "V"}]`),
		Results:             json.RawMessage(`{"passed": true}`),
	}
}

func certificateHeader(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("certificate", "cert.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["certificate"][0]
}

func TestCreateCalibrationRecord_SyncsEquipment(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusCalibrationOverdue})

	rec, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), nil)
	require.NoError(t, err)
	assert.Equal(t, id, rec.EquipmentID)
	assert.JSONEq(t, `{"passed": true}`, string(rec.Results))

	e := f.equipment.items[id]
	today := calibration.StartOfDay(fixedNow)
	require.True(t, e.LastCalibrationDate.Valid)
	assert.True(t, e.LastCalibrationDate.Time.Equal(today))
	assert.True(t, e.NextCalibrationDate.Time.Equal(today.Add(30*day)))
	assert.Equal(t, calibration.StatusActive, e.Status)
	assert.Contains(t, f.cache.dels, equipmentCacheKey(id))
}

func TestCreateCalibrationRecord_KeepsStickyStatus(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusRetired})

	_, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), nil)
	require.NoError(t, err)

	e := f.equipment.items[id]
	assert.Equal(t, calibration.StatusRetired, e.Status)
	assert.True(t, e.LastCalibrationDate.Valid)
}

func TestCreateCalibrationRecord_OlderRecordDoesNotMoveSchedule(t *testing.T) {
	f := newCalibrationFixture(true)
	last := calibration.StartOfDay(fixedNow).Add(-2 * day)
	next := last.Add(30 * day)
	id := f.seed(t, entities.Equipment{
		LastCalibrationDate: null.TimeFrom(last),
		NextCalibrationDate: null.TimeFrom(next),
		Status:              calibration.StatusActive,
	})

	_, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, last.Add(-60*day)), nil)
	require.NoError(t, err)

	e := f.equipment.items[id]
	assert.True(t, e.LastCalibrationDate.Time.Equal(last))
	assert.True(t, e.NextCalibrationDate.Time.Equal(next))
	assert.Empty(t, f.cache.dels)
}

func TestCreateCalibrationRecord_SyncDisabled(t *testing.T) {
	f := newCalibrationFixture(false)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusCalibrationOverdue})

	_, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), nil)
	require.NoError(t, err)

	e := f.equipment.items[id]
	assert.False(t, e.LastCalibrationDate.Valid)
	assert.Equal(t, calibration.StatusCalibrationOverdue, e.Status)
}

func TestCreateCalibrationRecord_Validation(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusActive})

	d := newRecordDTO(id, fixedNow)
	d.MeasurementPoints = json.RawMessage("null")
	_, err := f.service.CreateCalibrationRecord(context.Background(), d, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	d = newRecordDTO(id, fixedNow)
	d.Results = json.RawMessage(`{"passed":`)
	_, err = f.service.CreateCalibrationRecord(context.Background(), d, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(999, fixedNow), nil)
	var inputErr *apperrors.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "equipment_id", inputErr.Field)

	assert.Empty(t, f.calibrations.items)
}

func TestCreateCalibrationRecord_WithCertificate(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusActive})

	header := certificateHeader(t, []byte("%PDF-1.4\n%certificate"))
	rec, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), header)
	require.NoError(t, err)
	require.NotNil(t, rec.CertificateFile)
	assert.Equal(t, "calibration_certificates/cert.pdf", *rec.CertificateFile)
	assert.Contains(t, f.storage.files, *rec.CertificateFile)

	url, err := f.service.GetCertificateURL(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/calibration_certificates/cert.pdf", url)

	require.NoError(t, f.service.DeleteCalibrationRecord(context.Background(), rec.ID))
	assert.Equal(t, []string{"calibration_certificates/cert.pdf"}, f.storage.deleted)
}

func TestCreateCalibrationRecord_RejectsWrongFileType(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusActive})

	header := certificateHeader(t, []byte("just some text, not a certificate"))
	_, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), header)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, f.storage.files)
}

func TestCreateCalibrationRecord_CleansUpFileOnFailure(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusActive})
	f.calibrations.failErr = errors.New("db down")

	header := certificateHeader(t, []byte("%PDF-1.4\n%certificate"))
	_, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), header)
	require.Error(t, err)
	assert.Empty(t, f.storage.files)
	assert.Equal(t, []string{"calibration_certificates/cert.pdf"}, f.storage.deleted)
}

func TestGetCertificateURL_NoFile(t *testing.T) {
	f := newCalibrationFixture(true)
	id := f.seed(t, entities.Equipment{Status: calibration.StatusActive})

	rec, err := f.service.CreateCalibrationRecord(context.Background(), newRecordDTO(id, fixedNow), nil)
	require.NoError(t, err)

	_, err = f.service.GetCertificateURL(context.Background(), rec.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
