package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"calibrify/config"
	apperrors "calibrify/pkg/errors"
)

// ValidateFile проверяет размер и MIME-тип файла
// contextName - ключ из config.UploadContexts
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("внутренняя ошибка: неизвестный контекст загрузки '%s'", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return apperrors.NewInvalidInputError("file", "размер файла (%.2f MB) превышает лимит в %d MB", float64(fileHeader.Size)/1024/1024, rules.MaxSizeMB)
		}
	}

	// Тип определяем по содержимому (magic numbers), а не по расширению
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("ошибка чтения файла")
	}

	// курсор обратно в начало, файл ещё будут сохранять
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("ошибка обработки файла")
	}

	mimeType := http.DetectContentType(buffer[:n])
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return apperrors.NewInvalidInputError("file", "недопустимый формат файла: %s", mimeType)
	}

	return nil
}
