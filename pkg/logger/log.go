package logger

import (
	"os"

	"go.uber.org/zap"
)

const logDir = "./logs"

func NewLogger() *zap.Logger {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		panic(err)
	}

	dualConfig := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		OutputPaths:      []string{"stdout", logDir + "/app.log"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	dualLogger, err := dualConfig.Build()
	if err != nil {
		panic(err)
	}

	return dualLogger
}
