package pg

import "context"

// logger is the slog-compatible subset needed to route goose migration
// output through the application logger.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
