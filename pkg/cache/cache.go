package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/cachekv"
)

// RetrievalCache is the transparent look-aside cache in front of the
// retrieval client. Get failures are treated as misses; put failures are
// logged and otherwise ignored; cache failures are never fatal.
type RetrievalCache struct {
	store  cachekv.Store
	ttl    time.Duration
	logger zerolog.Logger
}

func New(store cachekv.Store, ttl time.Duration, logger zerolog.Logger) *RetrievalCache {
	return &RetrievalCache{store: store, ttl: ttl, logger: logger.With().Str("component", "retrieval_cache").Logger()}
}

// Get looks up a previously cached payload for utterance/kb. The boolean
// return is false on both a genuine miss and a store error; callers treat
// both identically, falling through to the retrieval service.
func (c *RetrievalCache) Get(ctx context.Context, utterance, knowledgeBase string, out any) bool {
	fp := Fingerprint(utterance, knowledgeBase)
	raw, err := c.store.Get(ctx, fp)
	if err != nil {
		if err != cachekv.ErrNotFound {
			c.logger.Warn().Err(err).Str("fingerprint", fp).Msg("cache get failed, treating as miss")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fp).Msg("cache payload corrupt, treating as miss")
		return false
	}
	return true
}

// Put stores payload for utterance/kb. A failure is logged, never returned,
// so callers never have to special-case a cache write failure.
func (c *RetrievalCache) Put(ctx context.Context, utterance, knowledgeBase string, payload any) {
	fp := Fingerprint(utterance, knowledgeBase)
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache payload marshal failed")
		return
	}
	if err := c.store.Put(ctx, fp, raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fp).Msg("cache put failed")
	}
}
