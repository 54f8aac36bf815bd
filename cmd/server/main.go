// Command server runs the chat orchestrator's HTTP surface: POST /chat,
// POST /chat/sync, GET /health, GET /health/detailed. It wires every
// collaborator behind the single orchestrator.Orchestrator and starts the
// periodic sweep of the in-process cachekv fallback stores.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/cache"
	"github.com/ebl-digital/chat-orchestrator/pkg/cachekv"
	"github.com/ebl-digital/chat-orchestrator/pkg/config"
	"github.com/ebl-digital/chat-orchestrator/pkg/directory"
	"github.com/ebl-digital/chat-orchestrator/pkg/disambiguation"
	"github.com/ebl-digital/chat-orchestrator/pkg/fee"
	"github.com/ebl-digital/chat-orchestrator/pkg/generative"
	"github.com/ebl-digital/chat-orchestrator/pkg/httpapi"
	"github.com/ebl-digital/chat-orchestrator/pkg/location"
	"github.com/ebl-digital/chat-orchestrator/pkg/orchestrator"
	"github.com/ebl-digital/chat-orchestrator/pkg/retrieval"
	"github.com/ebl-digital/chat-orchestrator/pkg/sessionmemory"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file (optional; env vars always override)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	redisCacheStore, redisPing := newRedisKV(cfg.Cache.RedisAddr, "cache:", logger)
	cacheFallback := cachekv.NewMemoryStore()
	cacheStore := cachekv.NewFallbackStore(redisCacheStore, cacheFallback, logger)
	retrievalCache := cache.New(cacheStore, cfg.Cache.CacheTTL(), logger)

	redisDisambigStore, disambigPing := newRedisKV(cfg.Disambiguation.RedisAddr, "disambig:", logger)
	disambigFallback := cachekv.NewMemoryStore()
	disambigStore := disambiguation.NewStore(cachekv.NewFallbackStore(redisDisambigStore, disambigFallback, logger), cfg.Disambiguation.DisambiguationTTL(), logger)

	directoryStore, err := directory.Open(cfg.Directory.ConnectionString)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open directory store")
	}
	defer directoryStore.Close()

	memoryDurable, err := sessionmemory.Open(cfg.Memory.ConnectionString, 8)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session memory store")
	}
	defer memoryDurable.Close()
	memoryStore := sessionmemory.NewFallbackStore(memoryDurable, sessionmemory.NewInMemoryStore(cfg.Memory.FallbackCapacity), logger)

	feeClient := fee.New(cfg.Fee.URL, cfg.Fee.TimeoutMs/1000, logger)
	locationClient := location.New(cfg.Location.URL, cfg.Location.TimeoutMs/1000, logger)

	retrievalClient := retrieval.New(
		cfg.Retrieval.URL,
		retrievalCache,
		8,
		2*time.Second,
		logger,
		retrieval.WithAPIKey(cfg.Retrieval.APIKey),
	)

	generativeClient := newGenerativeClient(cfg, logger)

	orch := orchestrator.New(
		feeClient,
		locationClient,
		directoryStore,
		retrievalClient,
		generativeClient,
		memoryStore,
		disambigStore,
		orchestrator.Config{
			MaxHistoryTurns: cfg.Orchestrator.MaxHistoryTurns,
			PerCallTimeout:  time.Duration(cfg.Orchestrator.PerCallTimeoutMs) * time.Millisecond,
			RetryCount:      cfg.Orchestrator.RetryCount,
			DefaultKB:       cfg.Retrieval.DefaultKB,
			GenerativeModel: cfg.Generative.Model,
			FallbackModel:   cfg.Generative.FallbackModel,
			Temperature:     cfg.Generative.Temperature,
		},
		logger,
	)

	probes := map[string]func(context.Context) error{
		"directory":      directoryStore.Ping,
		"memory":         func(ctx context.Context) error { _, err := memoryDurable.Read(ctx, "healthcheck", 1); return err },
		"cache":          redisPing,
		"disambiguation": disambigPing,
		"fee":            func(ctx context.Context) error { return pingURL(ctx, cfg.Fee.URL) },
		"location":       func(ctx context.Context) error { return pingURL(ctx, cfg.Location.URL) },
		"retrieval":      func(ctx context.Context) error { return pingURL(ctx, cfg.Retrieval.URL) },
	}

	server := httpapi.NewServer(orch, probes, logger)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 1m", func() {
		removed := cacheFallback.Sweep() + disambigFallback.Sweep()
		if removed > 0 {
			logger.Debug().Int("removed", removed).Msg("swept expired in-process fallback entries")
		}
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to schedule fallback-store sweep, expired entries will only be evicted lazily")
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses must not be cut off
		IdleTimeout:  120 * time.Second,
	}

	runServer(httpServer, logger)
}

// newRedisKV builds a Redis-backed cachekv.Store for addr, or a disabled
// stub (every call fails, forcing immediate fallback) when addr is empty;
// this lets the process run against the in-process fallback alone in
// local/dev deployments, where cache failures are never fatal.
func newRedisKV(addr, prefix string, logger zerolog.Logger) (cachekv.Store, func(context.Context) error) {
	if addr == "" {
		logger.Warn().Str("prefix", prefix).Msg("no redis address configured, running on in-process fallback only")
		stub := disabledStore{}
		return stub, stub.Ping
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := cachekv.NewRedisStore(client, prefix)
	return store, store.Ping
}

// disabledStore always misses/fails, driving cachekv.FallbackStore straight
// to its in-process MemoryStore.
type disabledStore struct{}

func (disabledStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errRedisDisabled
}
func (disabledStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errRedisDisabled
}
func (disabledStore) Delete(ctx context.Context, key string) error { return nil }
func (disabledStore) Ping(ctx context.Context) error               { return errRedisDisabled }

var errRedisDisabled = aierrors.New(aierrors.ClassPersistenceDegraded, errNotConfigured{})

type errNotConfigured struct{}

func (errNotConfigured) Error() string { return "redis not configured" }

// newGenerativeClient wires the Anthropic primary provider with an OpenAI
// fallback.
func newGenerativeClient(cfg *config.Config, logger zerolog.Logger) *generative.Client {
	var primary generative.Provider = generative.NewAnthropicProvider(cfg.Generative.AnthropicKey, logger)
	var fallback generative.Provider
	if cfg.Generative.OpenAIKey != "" {
		fallback = generative.NewOpenAIProvider(cfg.Generative.OpenAIKey, logger)
	}
	return generative.NewClient(primary, fallback, logger)
}

// pingURL performs a best-effort liveness check for a collaborator HTTP
// service, used only for /health/detailed. A missing URL counts as
// unreachable rather than skipped, since an operator who forgot to
// configure a collaborator should see it reported as down.
func pingURL(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		return errNotConfigured{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return aierrors.New(aierrors.ClassAuthoritativeError, errNotConfigured{})
	}
	return nil
}

func runServer(srv *http.Server, logger zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("chat orchestrator listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
