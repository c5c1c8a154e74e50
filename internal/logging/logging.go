// Package logging provides a leveled printf-style logger backed by zap.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the encoder.
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

// ParseFormat parses "console" or "json"; anything else is console.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatConsole
}

// Logger is a leveled logger. It is safe for concurrent use.
type Logger struct {
	mu     sync.RWMutex
	level  zap.AtomicLevel
	format Format
	sugar  *zap.SugaredLogger
}

// New creates a console logger writing to stderr.
func New(level Level) *Logger {
	return NewWithFormat(level, FormatConsole, os.Stderr)
}

// NewWithFormat creates a logger with the given encoder and destination.
func NewWithFormat(level Level, format Format, w io.Writer) *Logger {
	l := &Logger{
		level:  zap.NewAtomicLevelAt(level.zap()),
		format: format,
	}
	l.sugar = l.build(w)
	return l
}

func (l *Logger) build(w io.Writer) *zap.SugaredLogger {
	var enc zapcore.Encoder
	if l.format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), l.level)
	return zap.New(core).Sugar()
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar = l.build(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

func (l *Logger) s() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.s().Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.s().Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.s().Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.s().Errorf(format, args...)
}

// With returns a child logger that adds structured fields to every entry.
// The child keeps the parent's level but not later SetOutput calls.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		level:  l.level,
		format: l.format,
		sugar:  l.s().With(keysAndValues...),
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s().Sync()
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return &Logger{
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
		sugar: zap.NewNop().Sugar(),
	}
}
