package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithRecordID tags the context logger with the character record being
// operated on.
func WithRecordID(ctx context.Context, recordID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("record_id", recordID))
}
