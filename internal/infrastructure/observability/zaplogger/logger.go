package zaplogger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// SystemTraceID is used when no distributed trace context is available.
	SystemTraceID = "system"
	// SystemSpanID is used when no distributed span context is available.
	SystemSpanID = "system"
)

// Logger adapts zap to the observability.Logger port.
type Logger struct{ l *zap.Logger }

// New creates a production zap logger that emits JSON logs to stdout, enriched
// with the service and environment identifiers. When LOG_FILE is defined, logs
// are also duplicated to that file to aid local debugging.
func New(service, env string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		if err := ensureLogFile(logFile); err != nil {
			return nil, fmt.Errorf("prepare log file: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, logFile)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l: l}, nil
}

// Wrap adapts an existing zap logger. Tests pass zaptest/observer loggers here.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{l: l}
}

// System returns a logger carrying the placeholder trace fields used for
// process-level events (start-up, shutdown) that have no request.
func (z *Logger) System() observability.Logger {
	return z.With(
		observability.F("trace_id", SystemTraceID),
		observability.F("span_id", SystemSpanID),
	)
}

func (z *Logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return &Logger{l: z.l}
	}
	return &Logger{l: z.l.With(toZapFields(fields)...)}
}

func (z *Logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}
func (z *Logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZapFields(fields)...)
}
func (z *Logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}
func (z *Logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func (z *Logger) Sync() error {
	return z.l.Sync()
}

// Zap exposes the underlying logger for zap.ReplaceGlobals.
func (z *Logger) Zap() *zap.Logger { return z.l }

func toZapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func ensureLogFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		f, createErr := os.OpenFile(path, os.O_CREATE, 0o644)
		if createErr != nil {
			return createErr
		}
		_ = f.Close()
	}
	return nil
}
