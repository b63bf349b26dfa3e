package filestorage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"calibrify/pkg/config"

	"github.com/google/uuid"
)

// FileStorageInterface - хранилище загруженных файлов (сертификаты калибровки).
// Пути, которые возвращает Save, сохраняются в БД как есть.
type FileStorageInterface interface {
	Save(ctx context.Context, file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(ctx context.Context, filePath string) error
	URL(ctx context.Context, filePath string) (string, error)
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// New выбирает драйвер по FILE_STORAGE.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorageInterface, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalFileStorage(cfg.LocalPath)
	case DriverS3:
		return NewS3FileStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %q", cfg.Driver)
	}
}

// objectKey строит путь вида prefix/2006/01/02/2006-01-02-<uuid>.ext.
func objectKey(now time.Time, originalFileName, prefix string) string {
	ext := filepath.Ext(originalFileName)
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)
	return filepath.ToSlash(filepath.Join(prefix, now.Format("2006/01/02"), uniqueFileName))
}
