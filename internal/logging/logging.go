package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/config"
)

// Setup configures the global logger. In console format it writes to stderr
// only; in json format it also writes to daily-rotated files kept for a
// week under cfg.Dir.
func Setup(cfg config.LoggingConfig) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return io.NopCloser(nil), nil
	}

	writer, err := rotatelogs.New(
		filepath.Join(cfg.Dir, "server.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, "server.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open rotating log file: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(os.Stderr, writer))
	return writer, nil
}
