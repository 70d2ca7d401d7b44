package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// ErrFmtHandler decorates records that carry an error under ErrAttrKey with
// the stack trace recorded by cockroachdb/errors and the type of the
// innermost error.
type ErrFmtHandler struct {
	next slog.Handler
}

// WrapByErrFmtHandler returns handler wrapped in an ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{next: handler}
}

func (h *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var logged error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			logged, _ = attr.Value.Any().(error)
			return false
		}
		return true
	})
	if logged == nil {
		return h.next.Handle(ctx, r)
	}

	r.AddAttrs(slog.String(ErrTypeAttrKey, fmt.Sprintf("%T", errors.UnwrapAll(logged))))
	if stack := stacktrace(logged); stack != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stack))
	}
	return h.next.Handle(ctx, r)
}

func (h *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{next: h.next.WithGroup(g)}
}

// stacktrace returns the first safe detail of err. WithStack stores the
// formatted stack there.
func stacktrace(err error) string {
	if details := errors.GetSafeDetails(err).SafeDetails; len(details) > 0 {
		return details[0]
	}
	return ""
}
