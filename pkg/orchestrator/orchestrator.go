package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/classifier"
	"github.com/ebl-digital/chat-orchestrator/pkg/disambiguation"
	"github.com/ebl-digital/chat-orchestrator/pkg/generative"
	"github.com/ebl-digital/chat-orchestrator/pkg/sessionmemory"
)

// Config carries the orchestrator.* and generative.* options that are
// not already owned by a specific collaborator.
type Config struct {
	MaxHistoryTurns int
	PerCallTimeout  time.Duration
	RetryCount      int
	DefaultKB       string
	GenerativeModel string
	FallbackModel   string
	Temperature     float64
}

// Orchestrator composes every other subsystem behind a single HandleTurn
// entry point.
type Orchestrator struct {
	classify func(string) classifier.Classification

	fee        FeeClient
	location   LocationClient
	directory  DirectoryEngine
	retrieval  RetrievalClient
	generative GenerativeClient

	memory         sessionmemory.Store
	disambiguation *disambiguation.Store

	feeBreaker       *gobreaker.CircuitBreaker[feeResult]
	locationBreaker  *gobreaker.CircuitBreaker[locationResult]
	directoryBreaker *gobreaker.CircuitBreaker[directoryResult]
	retrievalBreaker *gobreaker.CircuitBreaker[retrievalResult]

	locks  *keyedLocks
	cfg    Config
	logger zerolog.Logger
}

// New wires every collaborator into an Orchestrator. All dependencies are
// required except generative, which a caller could still omit only in
// tests that never reach §4.8 steps (4)/(5).
func New(
	fee FeeClient,
	location LocationClient,
	dir DirectoryEngine,
	retrievalClient RetrievalClient,
	gen GenerativeClient,
	memory sessionmemory.Store,
	disambig *disambiguation.Store,
	cfg Config,
	logger zerolog.Logger,
) *Orchestrator {
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 20
	}
	if cfg.PerCallTimeout <= 0 {
		cfg.PerCallTimeout = 8 * time.Second
	}
	return &Orchestrator{
		classify:         classifier.Classify,
		fee:              fee,
		location:         location,
		directory:        dir,
		retrieval:        retrievalClient,
		generative:       gen,
		memory:           memory,
		disambiguation:   disambig,
		feeBreaker:       newBreaker[feeResult]("fee"),
		locationBreaker:  newBreaker[locationResult]("location"),
		directoryBreaker: newBreaker[directoryResult]("directory"),
		retrievalBreaker: newBreaker[retrievalResult]("retrieval"),
		locks:            newKeyedLocks(),
		cfg:              cfg,
		logger:           logger.With().Str("component", "orchestrator").Logger(),
	}
}

// HandleTurn is the single entry point for a turn: the
// streaming and synchronous HTTP handlers both call this function, never
// duplicating the dispatch tree. It returns a channel of Chunks; the last
// Chunk is always ChunkDone (success) or carries a ChunkError.
func (o *Orchestrator) HandleTurn(ctx context.Context, u Utterance) (<-chan Chunk, error) {
	if strings.TrimSpace(u.Query) == "" {
		return nil, aierrors.New(aierrors.ClassValidation, errValidationEmptyQuery)
	}
	if u.ConversationKey == "" {
		u.ConversationKey = u.SessionID
	}

	out := make(chan Chunk, 16)
	lock := o.locks.lockFor(u.ConversationKey)
	lock.Lock()
	go func() {
		defer lock.Unlock()
		defer close(out)
		o.run(ctx, u, out)
	}()
	return out, nil
}

// HandleTurnSync drains HandleTurn's channel and concatenates it, so no
// behavior diverges between the streaming and synchronous HTTP surfaces.
func (o *Orchestrator) HandleTurnSync(ctx context.Context, u Utterance) (string, []string, error) {
	ch, err := o.HandleTurn(ctx, u)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	var sources []string
	for chunk := range ch {
		switch chunk.Type {
		case ChunkDelta:
			b.WriteString(chunk.Delta)
		case ChunkDone:
			sources = chunk.Sources
		case ChunkError:
			return b.String(), sources, chunk.Err
		}
	}
	return b.String(), sources, nil
}

func (o *Orchestrator) run(ctx context.Context, u Utterance, out chan<- Chunk) {
	// Every error class is logged against a correlation
	// identifier derived from the session and conversation keys, so a
	// single turn's log lines can be grepped together across collaborators.
	correlationID := correlationIDFor(u.SessionID, u.ConversationKey)
	log := o.logger.With().
		Str("correlation_id", correlationID).
		Str("session_id", u.SessionID).
		Str("conversation_key", u.ConversationKey).
		Logger()
	ctx = log.WithContext(ctx)

	var assistant strings.Builder
	emit := func(text string) {
		if text == "" {
			return
		}
		assistant.WriteString(text)
		out <- Chunk{Type: ChunkDelta, Delta: text}
	}

	// (1) Disambiguation has absolute precedence: resolve or reprompt,
	// consulting no other collaborator.
	if ps, ok := o.disambiguation.Get(ctx, u.ConversationKey); ok {
		outcome, opt := disambiguation.Resolve(u.Query, ps.Options)
		switch outcome {
		case disambiguation.OutcomeResolved:
			o.disambiguation.Clear(ctx, u.ConversationKey)
			ans := o.resolveOption(ctx, ps, *opt)
			emit(ans.Text)
			o.finish(ctx, u, out, assistant.String(), nil)
			return
		case disambiguation.OutcomeReprompted:
			log.Debug().Msg("disambiguation reprompt")
			emit(ps.PromptText)
			o.finish(ctx, u, out, assistant.String(), nil)
			return
		}
	}

	// (2) Classify.
	cls := o.classify(u.Query)

	// (3) Authoritative dispatch, fee -> location -> directory.
	switch {
	case cls.FeeQuery:
		ans, prompt := o.dispatchFee(ctx, u.Query)
		if prompt != nil {
			o.disambiguation.Put(ctx, u.ConversationKey, pendingStateFromPrompt(*prompt))
			emit(prompt.PromptText)
		} else {
			emit(ans.Text)
		}
		o.finish(ctx, u, out, assistant.String(), nil)
		return

	case cls.LocationQuery:
		ans := o.dispatchLocation(ctx, u.Query)
		emit(ans.Text)
		o.finish(ctx, u, out, assistant.String(), nil)
		return

	case cls.DirectoryLookup:
		ans := o.dispatchDirectory(ctx, cls.SearchTerm)
		emit(ans.Text)
		o.finish(ctx, u, out, assistant.String(), nil)
		return

	case cls.SmallTalk:
		o.streamGenerative(ctx, u, "", out, &assistant)
		o.finish(ctx, u, out, assistant.String(), nil)
		return

	default:
		kb := knowledgeBaseFor(cls, u.KnowledgeBase, o.cfg.DefaultKB)
		result, err := o.dispatchRetrieval(ctx, u.Query, kb)
		var sources []string
		contextText := ""
		if err != nil {
			log.Warn().Err(err).Str("knowledge_base", kb).Msg("retrieval failed after retry, falling back to empty context")
			contextText = retrievalUnavailableNotice
		} else {
			contextText = result.Context
			sources = result.References
		}
		o.streamGenerative(ctx, u, contextText, out, &assistant)
		o.finish(ctx, u, out, assistant.String(), sources)
		return
	}
}

// resolveOption completes a successful selection: a
// precomputed verbatim answer when the Option carries no Params, or a
// re-issued Fee Client call when it does (today the only collaborator
// that produces AWAITING_SELECTION prompts).
func (o *Orchestrator) resolveOption(ctx context.Context, ps disambiguation.PendingState, opt disambiguation.Option) answer.RenderedAnswer {
	if len(opt.Params) == 0 {
		return answer.Authoritative(opt.AnswerText)
	}
	ans, prompt := o.dispatchFeeSelection(ctx, ps.Context, opt.Params)
	if prompt != nil {
		// A selection that is still ambiguous degenerates to a fresh
		// prompt rather than looping forever.
		return answer.Authoritative(prompt.PromptText)
	}
	return ans
}

// streamGenerative handles the non-authoritative path: prompt composition
// plus streaming, aggregating deltas into buf for persistence. A mid-stream
// error surfaces a scripted apology and stops; the partial text already
// buffered is left intact for persistence.
func (o *Orchestrator) streamGenerative(ctx context.Context, u Utterance, contextBlock string, out chan<- Chunk, buf *strings.Builder) {
	transcript := o.loadTranscript(ctx, u.SessionID)

	req := generative.Request{
		SystemPrompt: generative.SystemPrompt,
		Transcript:   generative.TruncateTranscript(transcript, o.cfg.GenerativeModel, o.cfg.MaxHistoryTurns*256),
		ContextBlock: contextBlock,
		UserMessage:  u.Query,
		Model:        o.cfg.GenerativeModel,
		Temperature:  o.cfg.Temperature,
	}

	events, err := o.generative.Stream(ctx, req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("generative client failed to start")
		text := generativeFailureMessage()
		buf.WriteString(text)
		out <- Chunk{Type: ChunkDelta, Delta: text}
		return
	}

	for evt := range events {
		switch evt.Type {
		case generative.EventDelta:
			buf.WriteString(evt.Delta)
			out <- Chunk{Type: ChunkDelta, Delta: evt.Delta}
		case generative.EventError:
			zerolog.Ctx(ctx).Warn().Err(evt.Err).Msg("generative stream failed mid-response")
			text := generativeFailureMessage()
			buf.WriteString(text)
			out <- Chunk{Type: ChunkDelta, Delta: text}
			return
		case generative.EventComplete:
			return
		}
	}
}

func (o *Orchestrator) loadTranscript(ctx context.Context, sessionID string) []generative.Turn {
	records, err := o.memory.Read(ctx, sessionID, o.cfg.MaxHistoryTurns)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("session memory read failed, continuing with empty transcript")
		return nil
	}
	turns := make([]generative.Turn, 0, len(records))
	for _, r := range records {
		role := generative.RoleUser
		if r.Role == sessionmemory.RoleAssistant {
			role = generative.RoleAssistant
		}
		turns = append(turns, generative.Turn{Role: role, Content: r.Content})
	}
	return turns
}

// finish persists the turn and emits the terminal Chunk. Persistence is a
// single operation invoked once per turn at the end of the pipeline, on
// its own background context so a caller disconnect (which cancels ctx)
// never loses an already-produced partial answer.
func (o *Orchestrator) finish(ctx context.Context, u Utterance, out chan<- Chunk, assistantText string, sources []string) {
	persistCtx, cancel := context.WithTimeout(zerolog.Ctx(ctx).WithContext(context.Background()), 5*time.Second)
	defer cancel()

	if err := o.memory.Append(persistCtx, sessionmemory.TurnRecord{SessionID: u.SessionID, Role: sessionmemory.RoleUser, Content: u.Query}); err != nil {
		zerolog.Ctx(persistCtx).Warn().Err(err).Msg("failed to persist user turn")
	}
	if assistantText != "" {
		if err := o.memory.Append(persistCtx, sessionmemory.TurnRecord{SessionID: u.SessionID, Role: sessionmemory.RoleAssistant, Content: assistantText}); err != nil {
			zerolog.Ctx(persistCtx).Warn().Err(err).Msg("failed to persist assistant turn")
		}
	}
	out <- Chunk{Type: ChunkDone, Sources: sources}
}

// correlationIDFor derives a per-turn correlation identifier from the
// session and conversation keys. xid gives a sortable, URL-safe
// identifier without a network
// round-trip, unlike the uuid generator already used for session ids.
func correlationIDFor(sessionID, conversationKey string) string {
	id := xid.New().String()
	switch {
	case sessionID != "" && conversationKey != "" && sessionID != conversationKey:
		return sessionID + ":" + conversationKey + ":" + id
	case conversationKey != "":
		return conversationKey + ":" + id
	case sessionID != "":
		return sessionID + ":" + id
	default:
		return id
	}
}

// knowledgeBaseFor picks the retrieval knowledge base for a generic
// turn: the classifier's KB tag first, then the request's
// explicit override, then the deployment default.
func knowledgeBaseFor(cls classifier.Classification, requested, fallback string) string {
	if cls.KnowledgeBase != "" {
		return cls.KnowledgeBase
	}
	if requested != "" {
		return requested
	}
	return fallback
}
