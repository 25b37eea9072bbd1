package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog with bot-specific field helpers.
type Logger struct {
	logger zerolog.Logger
	config Config
}

// Config holds logger configuration.
type Config struct {
	Level      string
	OutputFile string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	JSON       bool
}

// Fields represents structured log fields.
type Fields map[string]interface{}

// New creates a logger writing to stdout and, if OutputFile is set, to a
// rotated log file.
func New(config Config) (*Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	var writers []io.Writer
	if config.JSON {
		writers = append(writers, os.Stdout)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05.000",
		})
	}

	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
			Compress:   true,
		})
	}

	var writer io.Writer
	if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	l := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &Logger{logger: l, config: config}, nil
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Fields) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Fields) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Fields) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, err error, fields ...Fields) {
	event := l.logger.Error()
	if err != nil {
		event = event.Stack().Err(err)
	}
	addFields(event, fields...)
	event.Msg(msg)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, err error, fields ...Fields) {
	event := l.logger.Fatal()
	if err != nil {
		event = event.Stack().Err(err)
	}
	addFields(event, fields...)
	event.Msg(msg)
}

// WithFields creates a logger with predefined fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger(), config: l.config}
}

// WithComponent creates a logger with a component field.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields(Fields{"component": component})
}

// WithGuild creates a logger with a guild field.
func (l *Logger) WithGuild(guildID string) *Logger {
	return l.WithFields(Fields{"guild_id": guildID})
}

// WithSound creates a logger with sound identification fields.
func (l *Logger) WithSound(collection, sound string) *Logger {
	return l.WithFields(Fields{
		"collection": collection,
		"sound":      sound,
	})
}

func addFields(event *zerolog.Event, fields ...Fields) {
	for _, fieldSet := range fields {
		for key, value := range fieldSet {
			event.Interface(key, value)
		}
	}
}

// Default logger instance.
var defaultLogger *Logger

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// GetDefault returns the default logger.
func GetDefault() *Logger {
	return defaultLogger
}

// Package-level convenience functions.
func Debug(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Warn(msg, fields...)
	}
}

func Error(msg string, err error, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Error(msg, err, fields...)
	}
}

func Fatal(msg string, err error, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Fatal(msg, err, fields...)
	}
}

func WithComponent(component string) *Logger {
	if defaultLogger != nil {
		return defaultLogger.WithComponent(component)
	}
	return nil
}

func WithGuild(guildID string) *Logger {
	if defaultLogger != nil {
		return defaultLogger.WithGuild(guildID)
	}
	return nil
}
