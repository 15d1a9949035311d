package contextutil

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() without logger should return slog.Default()")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	if got := LoggerFromContext(ctx); got != logger {
		t.Error("LoggerFromContext() should return the logger stored by WithLogger")
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
}
