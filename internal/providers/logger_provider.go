package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"fitsyncd/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp    TypeEnum = "app"
	TypeHttp   TypeEnum = "http"
	TypeSync   TypeEnum = "sync"
	TypeNotify TypeEnum = "notify"
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	log  zerolog.Logger
	file *os.File
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.log.Error().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.log.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.log.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.log.Info().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.log.Fatal().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	path := filepath.Join(conf.Logger.Dir, "fitsyncd.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}

	log := zerolog.New(file).Level(level).With().Timestamp().Logger()
	if conf.Debug {
		log = log.Output(zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr}))
	}

	return &LogProvider{log: log, file: file}, nil
}
