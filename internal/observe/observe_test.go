package observe

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	logger, closer := NewLogger(LogOptions{
		Level: "debug",
		File:  filepath.Join(t.TempDir(), "quillctl.log"),
	})
	logger.Debug("hello", "k", "v")
	if err := closer(); err != nil {
		t.Errorf("closer() error = %v", err)
	}
}

func TestNewMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RequestsTotal.WithLabelValues("GET", "2xx").Inc()
	m.InvalidationsTotal.WithLabelValues("session_expired").Inc()
	m.TimerArmed.Set(1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}

	// A second registry must accept a fresh set without duplicate panics.
	_ = NewMetrics(prometheus.NewRegistry())
}

func TestNewProvidersDisabled(t *testing.T) {
	p, err := NewProviders(context.Background(), false, io.Discard)
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvidersEnabled(t *testing.T) {
	p, err := NewProviders(context.Background(), true, io.Discard)
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	tr := p.TracerProvider.Tracer("test")
	_, span := tr.Start(context.Background(), "op")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
