package ctxutil

import (
	"context"
	"testing"
)

func TestRunID(t *testing.T) {
	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("empty context returned %q", got)
	}
	ctx = WithRunID(ctx, "RUN-007")
	if got := RunIDFromContext(ctx); got != "RUN-007" {
		t.Errorf("RunIDFromContext() = %q, want RUN-007", got)
	}
}
