package sessionmemory

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func TestFallbackStoreDegradesOnDurableFailure(t *testing.T) {
	fallback := NewInMemoryStore(10)
	s := NewFallbackStore(failingDurableStore{}, fallback, zerolog.New(io.Discard))

	ctx := context.Background()
	if err := s.Append(ctx, TurnRecord{SessionID: "s1", Role: RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("append should succeed via fallback: %v", err)
	}

	got, err := s.Read(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("read should succeed via fallback: %v", err)
	}
	if len(got) != 1 || got[0].Content != "hello" {
		t.Fatalf("expected fallback record, got %+v", got)
	}
}
