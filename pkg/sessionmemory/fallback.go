package sessionmemory

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// FallbackStore switches reads and writes to an in-memory store the
// moment the durable store errors, and logs the degradation once.
type FallbackStore struct {
	durable  Store
	fallback *InMemoryStore
	degraded atomic.Bool
	logger   zerolog.Logger
}

var _ Store = (*FallbackStore)(nil)

func NewFallbackStore(durable Store, fallback *InMemoryStore, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{durable: durable, fallback: fallback, logger: logger.With().Str("component", "session_memory_fallback").Logger()}
}

func (s *FallbackStore) Append(ctx context.Context, rec TurnRecord) error {
	if !s.degraded.Load() {
		if err := s.durable.Append(ctx, rec); err != nil {
			if s.degraded.CompareAndSwap(false, true) {
				s.logger.Warn().Err(err).Msg("session memory store unavailable, degrading to in-memory fallback")
			}
		} else {
			return nil
		}
	}
	return s.fallback.Append(ctx, rec)
}

func (s *FallbackStore) Read(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if !s.degraded.Load() {
		recs, err := s.durable.Read(ctx, sessionID, limit)
		if err == nil {
			return recs, nil
		}
		if s.degraded.CompareAndSwap(false, true) {
			s.logger.Warn().Err(err).Msg("session memory store unavailable, reading from in-memory fallback")
		}
	}
	return s.fallback.Read(ctx, sessionID, limit)
}
