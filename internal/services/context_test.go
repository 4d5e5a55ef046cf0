package services_test

import (
	"context"
	"testing"

	"pbrlib/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "enrich")
	ctx = services.WithShow(ctx, "2024-03-01")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "enrich" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if slug, ok := services.ShowFromContext(ctx); !ok || slug != "2024-03-01" {
		t.Fatalf("unexpected show: %v %v", slug, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
