package services

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"calibrify/internal/calibration"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"

	"github.com/jackc/pgx/v5"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeEquipmentRepo struct {
	mu     sync.Mutex
	items  map[uint64]entities.Equipment
	nextID uint64
	finds  int
}

func newFakeEquipmentRepo() *fakeEquipmentRepo {
	return &fakeEquipmentRepo{items: make(map[uint64]entities.Equipment)}
}

func (r *fakeEquipmentRepo) sorted() []entities.Equipment {
	list := make([]entities.Equipment, 0, len(r.items))
	for _, e := range r.items {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *fakeEquipmentRepo) GetEquipment(_ context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Equipment
	for _, e := range r.sorted() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, e)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeEquipmentRepo) FindEquipment(_ context.Context, id uint64) (*entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	e, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) FindEquipmentForUpdate(ctx context.Context, _ pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.FindEquipment(ctx, id)
}

func (r *fakeEquipmentRepo) FindBySerialNumber(_ context.Context, _ pgx.Tx, serial string) (*entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.SerialNumber == serial {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeEquipmentRepo) checkSerial(e entities.Equipment) error {
	for _, other := range r.items {
		if other.ID != e.ID && other.SerialNumber == e.SerialNumber {
			return apperrors.ErrConflict
		}
	}
	return nil
}

func (r *fakeEquipmentRepo) CreateEquipment(_ context.Context, _ pgx.Tx, e entities.Equipment) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkSerial(e); err != nil {
		return 0, err
	}
	r.nextID++
	e.ID = r.nextID
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = &now, &now
	r.items[e.ID] = e
	return e.ID, nil
}

func (r *fakeEquipmentRepo) UpdateEquipment(_ context.Context, _ pgx.Tx, e entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return apperrors.ErrNotFound
	}
	if err := r.checkSerial(e); err != nil {
		return err
	}
	r.items[e.ID] = e
	return nil
}

func (r *fakeEquipmentRepo) DeleteEquipment(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeEquipmentRepo) GetCalibrationCandidates(_ context.Context, cutoff time.Time, inclusive bool) ([]entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Equipment
	for _, e := range r.sorted() {
		if !e.NextCalibrationDate.Valid {
			continue
		}
		if e.Status != calibration.StatusActive && e.Status != calibration.StatusCalibrationDue {
			continue
		}
		next := e.NextCalibrationDate.Time
		if next.Before(cutoff) || (inclusive && next.Equal(cutoff)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) GetScheduleSnapshots(_ context.Context) ([]entities.ScheduleSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.ScheduleSnapshot
	for _, e := range r.sorted() {
		out = append(out, entities.ScheduleSnapshot{
			ID:                  e.ID,
			LastCalibrationDate: e.LastCalibrationDate.Ptr(),
			NextCalibrationDate: e.NextCalibrationDate.Ptr(),
			Status:              e.Status,
		})
	}
	return out, nil
}

type fakeCalibrationRepo struct {
	mu      sync.Mutex
	items   map[uint64]entities.CalibrationRecord
	nextID  uint64
	failErr error
}

func newFakeCalibrationRepo() *fakeCalibrationRepo {
	return &fakeCalibrationRepo{items: make(map[uint64]entities.CalibrationRecord)}
}

func (r *fakeCalibrationRepo) GetCalibrationRecords(_ context.Context, filter types.Filter) ([]entities.CalibrationRecord, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.CalibrationRecord
	for _, rec := range r.items {
		out = append(out, rec)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeCalibrationRepo) GetByEquipmentID(_ context.Context, equipmentID uint64) ([]entities.CalibrationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entities.CalibrationRecord{}
	for _, rec := range r.items {
		if rec.EquipmentID == equipmentID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalibrationDate.After(out[j].CalibrationDate) })
	return out, nil
}

func (r *fakeCalibrationRepo) FindCalibrationRecord(_ context.Context, id uint64) (*entities.CalibrationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeCalibrationRepo) CreateCalibrationRecord(_ context.Context, _ pgx.Tx, rec entities.CalibrationRecord) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	r.nextID++
	rec.ID = r.nextID
	now := time.Now()
	rec.CreatedAt = &now
	r.items[rec.ID] = rec
	return rec.ID, nil
}

func (r *fakeCalibrationRepo) DeleteCalibrationRecord(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeCalibrationRepo) GetCertificateFiles(_ context.Context, equipmentID uint64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, rec := range r.items {
		if rec.EquipmentID == equipmentID && rec.CertificateFile.Valid {
			files = append(files, rec.CertificateFile.String)
		}
	}
	return files, nil
}

type fakeMaintenanceRepo struct {
	mu     sync.Mutex
	items  map[uint64]entities.MaintenanceRecord
	nextID uint64
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{items: make(map[uint64]entities.MaintenanceRecord)}
}

func (r *fakeMaintenanceRepo) GetMaintenanceRecords(_ context.Context, _ types.Filter) ([]entities.MaintenanceRecord, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.MaintenanceRecord
	for _, rec := range r.items {
		out = append(out, rec)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeMaintenanceRepo) GetByEquipmentID(_ context.Context, equipmentID uint64) ([]entities.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entities.MaintenanceRecord{}
	for _, rec := range r.items {
		if rec.EquipmentID == equipmentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMaintenanceRepo) FindMaintenanceRecord(_ context.Context, id uint64) (*entities.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeMaintenanceRepo) CreateMaintenanceRecord(_ context.Context, rec entities.MaintenanceRecord) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	r.items[rec.ID] = rec
	return rec.ID, nil
}

func (r *fakeMaintenanceRepo) DeleteMaintenanceRecord(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	dels []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string]string)} }

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		b, _ := json.Marshal(v)
		c.data[key] = string(b)
	}
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string]string
	deleted []string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{files: make(map[string]string)} }

func (s *fakeStorage) Save(_ context.Context, file io.Reader, name string, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := prefix + "/" + name
	s.files[key] = string(b)
	return key, nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) URL(_ context.Context, path string) (string, error) {
	return "/uploads/" + path, nil
}

type fakeDashboardRepo struct {
	activity entities.RecordActivity
	since    time.Time
}

func (r *fakeDashboardRepo) GetRecordActivity(_ context.Context, since time.Time) (*entities.RecordActivity, error) {
	r.since = since
	a := r.activity
	return &a, nil
}
