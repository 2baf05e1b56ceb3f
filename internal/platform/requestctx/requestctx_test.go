package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDFromContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Fatalf("RequestIDFromContext = %q, want %q", got, "req-42")
	}
}

func TestActorFromContextRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), "abc")
	if got := ActorFromContext(ctx); got != "abc" {
		t.Fatalf("ActorFromContext = %q, want %q", got, "abc")
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
	if got := ActorFromContext(nil); got != "" {
		t.Fatalf("expected empty actor for nil context, got %q", got)
	}
}

func TestWithNilContext(t *testing.T) {
	ctx := WithActor(nil, "abc")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got := ActorFromContext(ctx); got != "abc" {
		t.Fatalf("ActorFromContext = %q, want %q", got, "abc")
	}
}
