package models

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gorm_logger "gorm.io/gorm/logger"
)

// logger adapts a zerolog.Logger to gorm's logger interface. The log level
// is controlled by zerolog, gorm's own level switching is ignored.
type logger struct {
	Logger zerolog.Logger
}

func (l *logger) LogMode(gorm_logger.LogLevel) gorm_logger.Interface {
	return l
}

func (l *logger) Info(_ context.Context, format string, args ...any) {
	l.Logger.Info().Msgf(format, args...)
}

func (l *logger) Warn(_ context.Context, format string, args ...any) {
	l.Logger.Warn().Msgf(format, args...)
}

func (l *logger) Error(_ context.Context, format string, args ...any) {
	l.Logger.Error().Msgf(format, args...)
}

// Trace logs every statement with its runtime. Not-found results are routine
// and stay at debug level.
func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, rows := fc()
	event := l.Logger.Debug()

	if err != nil && !errors.Is(err, ErrResourceNotFound) {
		event = l.Logger.Error().Err(err)
	}

	event.
		Str("sql", sql).
		Int64("rows", rows).
		Dur("duration", time.Since(begin)).
		Msg("database query")
}
