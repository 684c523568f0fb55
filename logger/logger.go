package logger

import (
	"io"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
	gormlogger "gorm.io/gorm/logger"
)

// Logger is the minimal logging surface used across the application.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields carries structured log fields.
type Fields map[string]any

// Log is the global logger. It logs at info until Init is called.
var Log Logger = NewLogger("info")

// Init replaces the global logger with one at the given level.
func Init(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level)
}

// NewLogger builds a gookit/slog logger writing JSON lines to the console.
func NewLogger(level string) Logger {
	h := handler.NewConsoleHandler(levelsUpTo(level))
	h.SetFormatter(jsonFormatter())
	return slog.NewWithHandlers(h)
}

// NewWriterLogger builds the same JSON logger on top of w.
func NewWriterLogger(w io.Writer, level string) Logger {
	h := handler.NewIOWriter(w, levelsUpTo(level))
	h.SetFormatter(jsonFormatter())
	return slog.NewWithHandlers(h)
}

func levelsUpTo(level string) slog.Levels {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}
	return levels
}

func jsonFormatter() *slog.JSONFormatter {
	return slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		// Only datetime, level and message are fixed keys. Fields are
		// written as top-level keys.
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05.000Z07:00"
	})
}

func InfoWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	Log.Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Warn(msg)
		return
	}
	Log.Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	Log.Error(msg)
}

// badgerLogger adapts Logger to badger.Logger, which names its warning
// method Warningf.
type badgerLogger struct {
	Logger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// Badger returns the global logger in the shape badger expects.
func Badger() badger.Logger {
	return badgerLogger{Log}
}

type gormWriter struct {
	Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.Warnf(format, args...)
}

// Gorm returns a gorm logger that reports slow queries and failed statements
// through the global logger.
func Gorm() gormlogger.Interface {
	return gormlogger.New(gormWriter{Log}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
