package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// Default is used before the environment has been read.
func Default() zerolog.Logger {
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger().
		Level(zerolog.InfoLevel)
}

// New builds the application logger for env. Local output goes through a
// console writer unless w is not a terminal-facing stream.
func New(env string, w io.Writer) (zerolog.Logger, error) {
	var level zerolog.Level
	switch env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel
		if w == os.Stdout || w == os.Stderr {
			consoleWriter := zerolog.NewConsoleWriter()
			consoleWriter.TimeFormat = time.DateTime
			consoleWriter.Out = w
			w = consoleWriter
		}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger(), nil
}
