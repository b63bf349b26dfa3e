package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

var UploadContexts = map[string]UploadConfig{
	"calibration_certificate": {
		AllowedMimeTypes: []string{"application/pdf", "image/jpeg", "image/png", "image/jpg"},
		MaxSizeMB:        20,
		PathPrefix:       "calibration_certificates",
	},
	// xlsx - это zip-архив, http.DetectContentType видит его как application/zip
	"equipment_import": {
		AllowedMimeTypes: []string{"application/zip", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		MaxSizeMB:        10,
		PathPrefix:       "imports",
	},
}
