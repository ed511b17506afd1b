package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestOTelHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewOTelHandler(slog.NewTextHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "mission_completed")
	out := buf.String()
	if !strings.Contains(out, "trace_id=0102030405060708090a0b0c0d0e0f10") {
		t.Fatalf("expected trace_id in output: %s", out)
	}
	if !strings.Contains(out, "span_id=0102030405060708") {
		t.Fatalf("expected span_id in output: %s", out)
	}

	buf.Reset()
	logger.Info("no_span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Fatalf("unexpected trace_id without span: %s", buf.String())
	}
}

func TestFanoutHandler_RespectsLevels(t *testing.T) {
	var all, warn bytes.Buffer
	logger := slog.New(newFanoutHandler(
		slog.NewTextHandler(&all, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)).With("service", "spycard")

	logger.Info("profile_updated")
	logger.Warn("profile_propagation_failed")

	if !strings.Contains(all.String(), "profile_updated") || !strings.Contains(all.String(), "profile_propagation_failed") {
		t.Fatalf("info handler must receive both records: %s", all.String())
	}
	if strings.Contains(warn.String(), "profile_updated") {
		t.Fatalf("warn handler must skip info records: %s", warn.String())
	}
	if !strings.Contains(warn.String(), "service=spycard") {
		t.Fatalf("attrs must reach every handler: %s", warn.String())
	}
}

func TestErrorLogFileName(t *testing.T) {
	if got := errorLogFileName("spycard.log"); got != "spycard.error.log" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := errorLogFileName("spycard"); got != "spycard.error.log" {
		t.Fatalf("unexpected name: %s", got)
	}
}
