package river

import (
	"context"
	"io"
	"os"
)

type logWriterKey struct{}

// WithLogWriter returns a context carrying w as the destination for
// diagnostics produced while running a stream. Adapters set this before
// calling Router.Start/Resume so failures surfaced while running a
// particular request land wherever that request's logs are supposed to
// go, rather than always on process stdout.
func WithLogWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, logWriterKey{}, w)
}

// LogWriter returns the io.Writer set by WithLogWriter, or os.Stdout if
// none was set.
//
//	slog.New(slog.NewTextHandler(river.LogWriter(ctx), nil))
func LogWriter(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(logWriterKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
