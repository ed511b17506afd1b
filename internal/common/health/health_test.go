package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheck(t *testing.T) {
	Init("1.2.3")

	resp := Check(context.Background(), map[string]CheckFunc{
		"db":     func(context.Context) error { return nil },
		"valkey": func(context.Context) error { return errors.New("down") },
	})
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %s", resp.Status)
	}
	if resp.Components["db"] != "up" || resp.Components["valkey"] != "down" {
		t.Fatalf("unexpected components: %v", resp.Components)
	}
	if resp.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", resp.Version)
	}

	if ok := Check(context.Background(), nil); ok.Status != "ok" || ok.Components != nil {
		t.Fatalf("expected plain ok response, got %+v", ok)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 42 * time.Second, want: "42s"},
		{in: 3*time.Minute + 5*time.Second, want: "3m5s"},
		{in: 2*time.Hour + time.Minute + 1500*time.Millisecond, want: "2h1m2s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Fatalf("formatDuration(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
