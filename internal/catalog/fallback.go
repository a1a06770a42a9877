package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// fetchWithFallback runs fetch and substitutes fallback() whenever fetch errors,
// panics, or returns a result usable rejects. It never fails.
func fetchWithFallback[T any](
	ctx context.Context,
	logger *slog.Logger,
	name string,
	fetch func(context.Context) (T, error),
	usable func(T) bool,
	fallback func() T,
) (result T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("catalog fetcher panicked",
				"fetcher", name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			result = fallback()
		}
	}()

	out, err := fetch(ctx)
	if err != nil {
		logger.Warn("catalog fetcher failed, serving placeholders",
			"fetcher", name,
			"error", err,
		)
		return fallback()
	}
	if !usable(out) {
		logger.Info("catalog fetcher returned nothing usable, serving placeholders",
			"fetcher", name,
		)
		return fallback()
	}
	return out
}
