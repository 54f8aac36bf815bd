package disambiguation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/cachekv"
)

// keyPrefix namespaces disambiguation entries in a cachekv.Store that may
// also hold retrieval-cache entries.
const keyPrefix = "disambig:"

// Store persists at most one PendingState per conversation key, with a
// bounded TTL, on top of a cachekv.Store. The session identifier is never
// used as a key here, only the conversation key: a conversation key can
// exist when the session is absent.
type Store struct {
	kv     cachekv.Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewStore(kv cachekv.Store, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{kv: kv, ttl: ttl, logger: logger.With().Str("component", "disambiguation_store").Logger()}
}

// Get returns the pending state for conversationKey, or ok=false if there
// is none (idle or expired) or the store errored. A read failure is
// treated as idle rather than surfaced, since a stale state is allowed to
// silently expire.
func (s *Store) Get(ctx context.Context, conversationKey string) (PendingState, bool) {
	raw, err := s.kv.Get(ctx, keyPrefix+conversationKey)
	if err != nil {
		if err != cachekv.ErrNotFound {
			s.logger.Warn().Err(err).Str("conversation_key", conversationKey).Msg("disambiguation read failed, treating as idle")
		}
		return PendingState{}, false
	}
	var ps PendingState
	if err := json.Unmarshal(raw, &ps); err != nil {
		s.logger.Warn().Err(err).Str("conversation_key", conversationKey).Msg("disambiguation state corrupt, treating as idle")
		return PendingState{}, false
	}
	return ps, true
}

// Put writes (overwriting any prior) the AWAITING_SELECTION state for
// conversationKey. A write failure is logged, not returned: the caller has
// already decided to prompt the user, and a lost disambiguation state only
// degrades to a fresh classification on the next turn.
func (s *Store) Put(ctx context.Context, conversationKey string, ps PendingState) {
	if ps.CreatedAt.IsZero() {
		ps.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ps)
	if err != nil {
		s.logger.Warn().Err(err).Msg("disambiguation state marshal failed")
		return
	}
	if err := s.kv.Put(ctx, keyPrefix+conversationKey, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("conversation_key", conversationKey).Msg("disambiguation write failed")
	}
}

// Clear removes any pending state for conversationKey, e.g. after a
// successful RESOLVED transition.
func (s *Store) Clear(ctx context.Context, conversationKey string) {
	if err := s.kv.Delete(ctx, keyPrefix+conversationKey); err != nil {
		s.logger.Warn().Err(err).Str("conversation_key", conversationKey).Msg("disambiguation clear failed")
	}
}
