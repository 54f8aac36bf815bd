package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/cache"
	"github.com/ebl-digital/chat-orchestrator/pkg/shared/httputil"
)

// requestBody is the fixed retrieval parameter set: hybrid mode,
// top-k 8 entities / 5 chunks, bounded token budgets, reranking on.
type requestBody struct {
	Query              string `json:"query"`
	Mode               string `json:"mode"`
	TopKEntities       int    `json:"top_k_entities"`
	TopKChunks         int    `json:"top_k_chunks"`
	MaxEntityTokens    int    `json:"max_entity_tokens"`
	MaxRelationTokens  int    `json:"max_relation_tokens"`
	MaxTotalTokens     int    `json:"max_total_tokens"`
	Rerank             bool   `json:"rerank"`
	ReturnFullResponse bool   `json:"return_full_response"`
	KnowledgeBase      string `json:"knowledge_base"`
}

// Client is the bounded-concurrency, cache-fronted retrieval client, sent
// through pkg/shared/httputil like the Fee and Location Clients.
type Client struct {
	baseURL     string
	apiKey      string
	timeoutSecs int
	cache       *cache.RetrievalCache
	sem         *semaphore.Weighted
	waitFor     time.Duration
	logger      zerolog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithAPIKey attaches retrieval.api_key as a Bearer Authorization header
// on every call to the retrieval service.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

// New builds a Client bounded to maxConcurrent in-flight calls to the
// retrieval service. waitFor is how long an excess call waits for a slot
// before failing with a retriable timeout.
func New(baseURL string, rc *cache.RetrievalCache, maxConcurrent int64, waitFor time.Duration, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		timeoutSecs: 10,
		cache:       rc,
		sem:         semaphore.NewWeighted(maxConcurrent),
		waitFor:     waitFor,
		logger:      logger.With().Str("component", "retrieval_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve answers a (utterance, knowledge base) query:
// cache first, then the retrieval service on miss, under a bounded
// concurrency gate.
func (c *Client) Retrieve(ctx context.Context, utterance, knowledgeBase string) (Result, error) {
	var cached Result
	if c.cache.Get(ctx, utterance, knowledgeBase, &cached) {
		return cached, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.waitFor)
	defer cancel()
	if err := c.sem.Acquire(waitCtx, 1); err != nil {
		return Result{}, aierrors.New(aierrors.ClassRetrievalError, fmt.Errorf("%w: %v", ErrBackPressure, err))
	}
	defer c.sem.Release(1)

	result, err := c.call(ctx, utterance, knowledgeBase)
	if err != nil {
		return Result{}, err
	}

	c.cache.Put(ctx, utterance, knowledgeBase, result)
	return result, nil
}

func (c *Client) call(ctx context.Context, utterance, knowledgeBase string) (Result, error) {
	body := requestBody{
		Query:              utterance,
		Mode:               "hybrid",
		TopKEntities:       8,
		TopKChunks:         5,
		MaxEntityTokens:    2500,
		MaxRelationTokens:  3500,
		MaxTotalTokens:     12000,
		Rerank:             true,
		ReturnFullResponse: true,
		KnowledgeBase:      knowledgeBase,
	}
	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	data, status, err := httputil.PostJSON(ctx, c.baseURL+"/retrieve", headers, body, c.timeoutSecs)
	if err != nil {
		return Result{}, aierrors.New(aierrors.ClassRetrievalError, fmt.Errorf("retrieval service status %d: %w", status, err))
	}

	var raw RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, aierrors.New(aierrors.ClassRetrievalError, err)
	}

	return Result{Context: format(raw), References: raw.References}, nil
}

// ErrBackPressure is returned (wrapped) when the concurrency gate times out.
var ErrBackPressure = errors.New("retrieval client: concurrency limit exceeded")
