package services_test

import (
	"context"
	"testing"

	"mindscribe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithClientID(ctx, "1")
	ctx = services.WithSessionID(ctx, "101")
	ctx = services.WithFlowID(ctx, "flow-a")
	ctx = services.WithStage(ctx, "transcribe")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ClientIDFromContext(ctx); !ok || id != "1" {
		t.Fatalf("unexpected client id: %v %v", id, ok)
	}
	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "101" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if id, ok := services.FlowIDFromContext(ctx); !ok || id != "flow-a" {
		t.Fatalf("unexpected flow id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transcribe" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
