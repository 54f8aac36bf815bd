package cachekv

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FallbackStore tries a primary store (normally Redis) first and falls
// back to an in-process store on any primary error, logging the
// degradation once per failure.
type FallbackStore struct {
	primary  Store
	fallback *MemoryStore
	logger   zerolog.Logger
}

var _ Store = (*FallbackStore)(nil)

func NewFallbackStore(primary Store, fallback *MemoryStore, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, logger: logger.With().Str("component", "cachekv_fallback").Logger()}
}

func (s *FallbackStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.primary.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if err == ErrNotFound {
		return nil, ErrNotFound
	}
	s.logger.Warn().Err(err).Msg("primary store unavailable, reading from in-process fallback")
	return s.fallback.Get(ctx, key)
}

func (s *FallbackStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.primary.Put(ctx, key, value, ttl); err != nil {
		s.logger.Warn().Err(err).Msg("primary store unavailable, writing to in-process fallback")
		return s.fallback.Put(ctx, key, value, ttl)
	}
	return nil
}

func (s *FallbackStore) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	_ = s.fallback.Delete(ctx, key)
	return err
}
