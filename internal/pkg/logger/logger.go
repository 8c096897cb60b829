package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options picks the encoder and the minimum level. Mode "prod" writes JSON
// to stderr; anything else writes colored console lines. An empty Level
// means debug in dev mode and info in prod.
type Options struct {
	Mode    string
	Level   string
	Service string
}

// Logger is a key/value logger over zap. Its level can be changed at runtime
// and is shared by every logger derived with With.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

func New(opts Options) (*Logger, error) {
	prod := false
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "prod", "production":
		prod = true
	}

	level := zapcore.DebugLevel
	if prod {
		level = zapcore.InfoLevel
	}
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var cfg zap.Config
	if prod {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	if opts.Service != "" {
		base = base.With(zap.String("service", opts.Service))
	}
	return &Logger{sugar: base.Sugar(), level: cfg.Level}, nil
}

// FromCore wraps an existing zap core, mostly for tests with an observer.
func FromCore(core zapcore.Core) *Logger {
	return &Logger{sugar: zap.New(core).Sugar(), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// SetLevel changes the minimum level of this logger and all its children.
func (l *Logger) SetLevel(level zapcore.Level) { l.level.SetLevel(level) }

func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *Logger) Sync() { _ = l.sugar.Sync() }

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(kv...), level: l.level}
}
