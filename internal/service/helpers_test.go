package service

import (
	"io"

	"github.com/dompetkeluarga/backend/internal/logger"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return logger.NewWithWriter(io.Discard)
}
