package telemetry

import (
	"context"
	"testing"
)

func TestNewTracerDisabledIsNoop(t *testing.T) {
	tracer, err := NewTracer(false, "test")
	if err != nil {
		t.Fatalf("NewTracer returned error: %v", err)
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown of disabled tracer returned error: %v", err)
	}
}

func TestNewTracerEnabledShutsDown(t *testing.T) {
	tracer, err := NewTracer(true, "test")
	if err != nil {
		t.Fatalf("NewTracer returned error: %v", err)
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}
