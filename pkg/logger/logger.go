package logger

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init replaces the global logger with a console + rolling file writer.
func Init(file string) {
	log.Logger = zerolog.New(NewWriter(file)).With().Timestamp().Caller().Logger()
}

// New builds a component logger writing to its own rolling log file.
func New(file string) zerolog.Logger {
	return zerolog.New(NewWriter(file)).With().Timestamp().Caller().Logger()
}

func NewWriter(file string) io.Writer {
	return io.MultiWriter(
		NewConsoleWriter(),
		NewLumberjack(file),
	)
}

func NewConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
}

func NewLumberjack(file string) io.Writer {
	abs, err := filepath.Abs(".")
	if err != nil {
		panic(err)
	}

	return &lumberjack.Logger{
		Filename:   path.Join(abs, "logs", file),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}
}
