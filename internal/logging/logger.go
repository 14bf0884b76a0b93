// Package logging defines a minimal structured-logging interface used across
// the project, with slog and zap backends.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "upload ticket issued", "asset_id", id, "size", size)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Options selects and tunes a backend.
type Options struct {
	// Backend is "slog" (default) or "zap".
	Backend string
	// Level is one of debug, info, warn, error.
	Level string
	// Path enables a rotating file sink (zap backend only).
	Path string
}

// New builds the Logger described by opts.
func New(opts Options) (Logger, error) {
	if opts.Backend == "zap" {
		return NewZapLogger(opts)
	}
	return NewJSONSlogLogger(opts), nil
}

// Nop discards everything. Handy in tests.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
