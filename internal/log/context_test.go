// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"context"
	"testing"
)

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
		want      string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			requestID: "test-id-123",
			want:      "test-id-123",
		},
		{
			name:      "background context",
			ctx:       context.Background(),
			requestID: "req-456",
			want:      "req-456",
		},
		{
			name:      "empty request ID",
			ctx:       context.Background(),
			requestID: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.requestID)
			got := RequestIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextWithSessionID(t *testing.T) {
	ctx := ContextWithSessionID(context.Background(), "sess-1")
	if got := SessionIDFromContext(ctx); got != "sess-1" {
		t.Errorf("SessionIDFromContext() = %v, want sess-1", got)
	}
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Errorf("SessionIDFromContext() on empty ctx = %v, want empty", got)
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(nil, "corr-9")
	if got := CorrelationIDFromContext(ctx); got != "corr-9" {
		t.Errorf("CorrelationIDFromContext() = %v, want corr-9", got)
	}
}

func TestWithContextEnrichment(t *testing.T) {
	testBuf.Reset()

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithSessionID(ctx, "sess-2")

	l := WithContext(ctx, Base())
	l.Info().Msg("enriched")

	entry := lastEntry(t)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["session_id"] != "sess-2" {
		t.Errorf("session_id = %v, want sess-2", entry["session_id"])
	}
}

func TestWithComponentFromContext(t *testing.T) {
	testBuf.Reset()

	ctx := ContextWithRequestID(context.Background(), "req-7")
	l := WithComponentFromContext(ctx, "playback")
	l.Info().Msg("component")

	entry := lastEntry(t)
	if entry["component"] != "playback" {
		t.Errorf("component = %v, want playback", entry["component"])
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("request_id = %v, want req-7", entry["request_id"])
	}
}

func TestFromContextFallsBackToBase(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}
	if l2 := FromContext(nil); l2 == nil {
		t.Fatal("FromContext(nil) returned nil")
	}
}
