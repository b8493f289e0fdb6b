package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

type loggerKey struct{}

// With stores logger on ctx. A nil logger leaves ctx unchanged.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr returns the context logger, or fallback when ctx carries none.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}

// Enrich derives a logger from the one on ctx (or fallback) with extra
// fields, stores it back on ctx and returns both.
func Enrich(ctx context.Context, fallback observability.Logger, fields ...observability.Field) (context.Context, observability.Logger) {
	logger := FromOr(ctx, fallback)
	if logger == nil {
		logger = observability.NopLogger()
	}
	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return With(ctx, logger), logger
}
