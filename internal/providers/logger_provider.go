package providers

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"tuner/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes application and access logs to separate files so the
// request firehose never drowns out operational messages.
type LogProvider struct {
	app    zerolog.Logger
	access zerolog.Logger
	files  []*os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := openLogFile(filepath.Join(conf.Logger.Dir, "app.log"), mode)
	if err != nil {
		return nil, err
	}
	accessFile, err := openLogFile(filepath.Join(conf.Logger.Dir, "access.log"), mode)
	if err != nil {
		appFile.Close()
		return nil, err
	}

	return &LogProvider{
		app:    zerolog.New(appFile).Level(level).With().Timestamp().Logger(),
		access: zerolog.New(accessFile).Level(level).With().Timestamp().Logger(),
		files:  []*os.File{appFile, accessFile},
	}, nil
}

func openLogFile(path string, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
}

func (lp *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	if t == TypeApp {
		return &lp.app
	}
	return &lp.access
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
}
