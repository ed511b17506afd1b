package telemetry

import (
	"context"
	"strings"
	"testing"

	commonconfig "github.com/park285/spycard-go/internal/common/config"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), commonconfig.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsEnabled() {
		t.Fatal("expected disabled provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of disabled provider failed: %v", err)
	}
}

func TestRootSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 1.0, want: "AlwaysOnSampler"},
		{rate: 2.0, want: "AlwaysOnSampler"},
		{rate: 0, want: "AlwaysOffSampler"},
		{rate: 0.25, want: "TraceIDRatioBased"},
	}
	for _, tt := range tests {
		got := RootSampler(tt.rate).Description()
		if !strings.HasPrefix(got, tt.want) {
			t.Fatalf("rate=%v: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}
