package utils

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the levelled, printf-style logger used across the pipeline.
// It wraps a zap SugaredLogger.
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalLogger *Logger
	logMu        sync.Mutex
)

// LoggerOptions selects level, encoding and sinks.
type LoggerOptions struct {
	Level   string // debug | info | warn | error
	Format  string // json | console
	File    string // optional extra output path
	Quiet   bool   // drop stdout/stderr sinks (file only)
	Service string
}

// InitLogger builds the global logger. Calling it again replaces it.
func InitLogger(opts LoggerOptions) (*Logger, error) {
	var zcfg zap.Config
	if opts.Format == "json" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))

	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if opts.Quiet {
		zcfg.OutputPaths = nil
		zcfg.ErrorOutputPaths = nil
	}
	if opts.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, opts.File)
		zcfg.ErrorOutputPaths = append(zcfg.ErrorOutputPaths, opts.File)
	}

	var base *zap.Logger
	if len(zcfg.OutputPaths) == 0 {
		base = zap.NewNop()
	} else {
		var err error
		base, err = zcfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			return nil, err
		}
	}
	if opts.Service != "" {
		base = base.With(zap.String("service_name", opts.Service))
	}

	l := &Logger{base: base, sugar: base.Sugar()}
	logMu.Lock()
	globalLogger = l
	logMu.Unlock()
	return l, nil
}

// SetLogger installs l as the global logger. Tests use it with NewNopLogger.
func SetLogger(l *Logger) {
	logMu.Lock()
	globalLogger = l
	logMu.Unlock()
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return FromZap(zap.NewNop())
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	z = z.WithOptions(zap.AddCallerSkip(1))
	return &Logger{base: z, sugar: z.Sugar()}
}

// L returns the global logger, falling back to a development logger on
// stdout if InitLogger has not been called.
func L() *Logger {
	logMu.Lock()
	l := globalLogger
	logMu.Unlock()
	if l != nil {
		return l
	}
	l, err := InitLogger(LoggerOptions{Level: "debug", Format: "console"})
	if err != nil {
		l = NewNopLogger()
		SetLogger(l)
	}
	return l
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes buffered entries.
func (l *Logger) Close() {
	_ = l.base.Sync()
}

func (l *Logger) Debug(f string, a ...any) { l.sugar.Debugf(f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.sugar.Infof(f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.sugar.Warnf(f, a...) }
func (l *Logger) Error(f string, a ...any) { l.sugar.Errorf(f, a...) }
func (l *Logger) Fatal(f string, a ...any) { l.sugar.Fatalf(f, a...) }
