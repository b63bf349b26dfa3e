package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix - под этим путём echo раздаёт basePath как статику.
const URLPrefix = "/uploads/"

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath}, nil
}

func (s *LocalFileStorage) Save(_ context.Context, file io.Reader, originalFileName string, prefix string) (string, error) {
	key := objectKey(time.Now(), originalFileName, prefix)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		_ = os.Remove(fullPath)
		return "", err
	}
	return key, nil
}

// Delete принимает как относительный путь, так и "/uploads/...". Отсутствие файла не ошибка.
func (s *LocalFileStorage) Delete(_ context.Context, filePath string) error {
	relativePath := strings.TrimPrefix(filePath, URLPrefix)
	if relativePath == "" || strings.Contains(relativePath, "..") {
		return fmt.Errorf("некорректный путь файла: %q", filePath)
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalFileStorage) URL(_ context.Context, filePath string) (string, error) {
	return URLPrefix + strings.TrimPrefix(filePath, URLPrefix), nil
}
