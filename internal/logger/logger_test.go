package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" INFO ", slog.LevelInfo},
		{"garbage", slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetLevelRoundTrip(t *testing.T) {
	defer SetLevel("debug")

	for _, level := range []string{"debug", "info", "warn", "error"} {
		SetLevel(level)
		if got := GetLevel(); got != level {
			t.Errorf("GetLevel() = %q after SetLevel(%q)", got, level)
		}
	}
}

func TestLineHandlerFormat(t *testing.T) {
	var buf strings.Builder
	h := &lineHandler{outs: []io.Writer{&buf}, mu: &sync.Mutex{}}

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	record := slog.NewRecord(ts, slog.LevelInfo, "Call added", 0)
	record.AddAttrs(slog.String("call_id", "abc"), slog.Int("count", 2))

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	got := buf.String()
	want := "[09:26:53] [INFO] Call added call_id=abc count=2\n"
	if got != want {
		t.Errorf("Handle() wrote %q, want %q", got, want)
	}
}

func TestLineHandlerFiltersBelowLevel(t *testing.T) {
	SetLevel("warn")
	defer SetLevel("debug")

	var buf strings.Builder
	h := &lineHandler{outs: []io.Writer{&buf}, mu: &sync.Mutex{}}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "suppressed", 0)
	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Handle() wrote %q below the active level, want nothing", buf.String())
	}
}

func TestWithAttrsPrependsSharedAttrs(t *testing.T) {
	var buf strings.Builder
	base := &lineHandler{outs: []io.Writer{&buf}, mu: &sync.Mutex{}}
	h := base.WithAttrs([]slog.Attr{slog.String("component", "session")})

	record := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if !strings.Contains(buf.String(), "component=session") {
		t.Errorf("Handle() wrote %q, want the shared attr included", buf.String())
	}
}
