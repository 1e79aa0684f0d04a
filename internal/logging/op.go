package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Op tracks a logical client operation (a network call, a command run)
// so its outcome can be logged with consistent trace metadata.
type Op struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartOp derives an operation-scoped logger from the context, assigning
// a trace id when the context does not carry one yet. It returns the
// enriched context and the operation handle.
func StartOp(ctx context.Context, name string) (context.Context, *Op) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	logger = logger.With(slog.String("op", name))
	ctx = WithLogger(ctx, logger)

	return ctx, &Op{name: name, logger: logger, start: time.Now()}
}

// End finalizes the operation and emits a completion log entry. A non-nil
// error downgrades the entry to a warning carrying the failure.
func (o *Op) End(err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed",
			slog.Duration("duration", time.Since(o.start)),
			slog.String("error", err.Error()),
		)
		return
	}
	o.logger.Info("operation completed", slog.Duration("duration", time.Since(o.start)))
}
