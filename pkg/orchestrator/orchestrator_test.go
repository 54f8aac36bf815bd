package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/cachekv"
	"github.com/ebl-digital/chat-orchestrator/pkg/directory"
	"github.com/ebl-digital/chat-orchestrator/pkg/disambiguation"
	"github.com/ebl-digital/chat-orchestrator/pkg/generative"
	"github.com/ebl-digital/chat-orchestrator/pkg/retrieval"
	"github.com/ebl-digital/chat-orchestrator/pkg/sessionmemory"
)

// --- fakes implementing the orchestrator's narrow collaborator interfaces ---

type fakeFee struct {
	ans    answer.RenderedAnswer
	prompt *answer.Prompt
	err    error
	calls  int
}

func (f *fakeFee) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, *answer.Prompt, error) {
	f.calls++
	return f.ans, f.prompt, f.err
}

func (f *fakeFee) ResolveSelection(ctx context.Context, promptContext, params map[string]string) (answer.RenderedAnswer, *answer.Prompt, error) {
	f.calls++
	return f.ans, f.prompt, f.err
}

type fakeLocation struct {
	ans answer.RenderedAnswer
	err error
}

func (f *fakeLocation) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, error) {
	return f.ans, f.err
}

type fakeDirectory struct {
	employees []directory.Employee
	err       error
	calls     int
}

func (f *fakeDirectory) Search(ctx context.Context, term string, limit int) ([]directory.Employee, error) {
	f.calls++
	return f.employees, f.err
}

type fakeRetrieval struct {
	result retrieval.Result
	err    error
	calls  int
}

func (f *fakeRetrieval) Retrieve(ctx context.Context, utterance, kb string) (retrieval.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeGenerative struct {
	reply string
	calls int
}

func (f *fakeGenerative) Stream(ctx context.Context, req generative.Request) (<-chan generative.Event, error) {
	f.calls++
	ch := make(chan generative.Event, 2)
	ch <- generative.Event{Type: generative.EventDelta, Delta: f.reply}
	ch <- generative.Event{Type: generative.EventComplete}
	close(ch)
	return ch, nil
}

type fakeMemory struct {
	records []sessionmemory.TurnRecord
}

func (m *fakeMemory) Append(ctx context.Context, rec sessionmemory.TurnRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *fakeMemory) Read(ctx context.Context, sessionID string, limit int) ([]sessionmemory.TurnRecord, error) {
	return nil, nil
}

func newTestOrchestrator(fee *fakeFee, loc *fakeLocation, dir *fakeDirectory, ret *fakeRetrieval, gen *fakeGenerative, mem *fakeMemory) *Orchestrator {
	disambigStore := disambiguation.NewStore(cachekv.NewMemoryStore(), 10*time.Minute, zerolog.Nop())
	return New(fee, loc, dir, ret, gen, mem, disambigStore, Config{}, zerolog.Nop())
}

func drain(t *testing.T, ch <-chan Chunk) (string, []string) {
	t.Helper()
	var text string
	var sources []string
	for c := range ch {
		switch c.Type {
		case ChunkDelta:
			text += c.Delta
		case ChunkDone:
			sources = c.Sources
		case ChunkError:
			t.Fatalf("unexpected error chunk: %v", c.Err)
		}
	}
	return text, sources
}

// Small talk never touches fee/location/directory
// and goes straight to the generative client with an empty context block.
func TestHandleTurn_SmallTalk(t *testing.T) {
	fee := &fakeFee{}
	dir := &fakeDirectory{}
	ret := &fakeRetrieval{}
	gen := &fakeGenerative{reply: "Hello there!"}
	mem := &fakeMemory{}
	o := newTestOrchestrator(fee, &fakeLocation{}, dir, ret, gen, mem)

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, _ := drain(t, ch)

	if text != "Hello there!" {
		t.Fatalf("expected the generative reply verbatim, got %q", text)
	}
	if fee.calls != 0 || dir.calls != 0 || ret.calls != 0 {
		t.Fatalf("small talk must not consult fee/directory/retrieval, got fee=%d dir=%d ret=%d", fee.calls, dir.calls, ret.calls)
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly one generative call, got %d", gen.calls)
	}
	if len(mem.records) != 2 || mem.records[0].Role != sessionmemory.RoleUser || mem.records[1].Role != sessionmemory.RoleAssistant {
		t.Fatalf("expected one user and one assistant record, got %+v", mem.records)
	}
}

// A directory hit renders verbatim and never calls retrieval.
func TestHandleTurn_DirectoryHit(t *testing.T) {
	dir := &fakeDirectory{employees: []directory.Employee{{
		FullName:    "Zahid Hasan",
		Designation: "Manager",
		Email:       "zahid@ebl.com",
		Mobile:      "0170000000",
		IPPhone:     "1234",
	}}}
	ret := &fakeRetrieval{}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, dir, ret, &fakeGenerative{}, &fakeMemory{})

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "phone number of zahid", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, _ := drain(t, ch)

	if text == "" {
		t.Fatal("expected a rendered directory answer")
	}
	if ret.calls != 0 {
		t.Fatalf("directory queries must never fall through to retrieval, got %d calls", ret.calls)
	}
}

// A directory miss renders a scripted not-found message and still never
// calls retrieval.
func TestHandleTurn_DirectoryMiss(t *testing.T) {
	dir := &fakeDirectory{employees: nil}
	ret := &fakeRetrieval{}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, dir, ret, &fakeGenerative{}, &fakeMemory{})

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "phone number of nosuchperson", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, _ := drain(t, ch)

	if text == "" {
		t.Fatal("expected a scripted not-found message")
	}
	if ret.calls != 0 {
		t.Fatalf("directory miss must not fall through to retrieval, got %d calls", ret.calls)
	}
}

// A directory store error is still surfaced (not silently dropped) and
// still never falls through to retrieval, per the Open Question decision
// in DESIGN.md.
func TestHandleTurn_DirectoryError_NoRetrievalFallback(t *testing.T) {
	dir := &fakeDirectory{err: &directory.ErrUnavailable{Cause: errors.New("db down")}}
	ret := &fakeRetrieval{}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, dir, ret, &fakeGenerative{}, &fakeMemory{})

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "employee id of someone", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, _ := drain(t, ch)

	if text == "" {
		t.Fatal("expected a user-visible apology for a directory store failure")
	}
	if ret.calls != 0 {
		t.Fatalf("a directory error must not fall through to retrieval, got %d calls", ret.calls)
	}
}

// A generic question with no authoritative tag invokes retrieval and
// feeds its context into the generative client.
func TestHandleTurn_GenericGoesToRetrievalThenGenerative(t *testing.T) {
	ret := &fakeRetrieval{result: retrieval.Result{Context: "policy says X", References: []string{"doc-1"}}}
	gen := &fakeGenerative{reply: "Answer grounded in policy."}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, &fakeDirectory{}, ret, gen, &fakeMemory{})

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "what is the leave policy", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, sources := drain(t, ch)

	if ret.calls != 1 {
		t.Fatalf("expected exactly one retrieval call, got %d", ret.calls)
	}
	if text != "Answer grounded in policy." {
		t.Fatalf("unexpected generative text: %q", text)
	}
	if len(sources) != 1 || sources[0] != "doc-1" {
		t.Fatalf("expected retrieval references to surface as sources, got %v", sources)
	}
}

// On authoritative-source error (location), the orchestrator emits an
// apology and never invokes the generative client.
func TestHandleTurn_LocationError_NoGenerativeFallback(t *testing.T) {
	loc := &fakeLocation{err: aierrors.New(aierrors.ClassAuthoritativeError, errors.New("timeout"))}
	gen := &fakeGenerative{reply: "should never be seen"}
	o := newTestOrchestrator(&fakeFee{}, loc, &fakeDirectory{}, &fakeRetrieval{}, gen, &fakeMemory{})

	ch, err := o.HandleTurn(context.Background(), Utterance{Query: "how many branches in dhaka", SessionID: "s1"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	text, _ := drain(t, ch)

	if text == "" {
		t.Fatal("expected an apology message")
	}
	if gen.calls != 0 {
		t.Fatalf("an authoritative-source error must not fall through to the generative client, got %d calls", gen.calls)
	}
}

// A fee disambiguation prompt followed by a numeric selection resolves
// to the chosen option's answer and clears the state; a stopword-only
// reply reprompts and leaves the state untouched.
func TestHandleTurn_DisambiguationResolveAndReprompt(t *testing.T) {
	prompt := &answer.Prompt{
		Kind:       "card_product",
		PromptText: "Which card did you mean: 1) Classic 2) Gold 3) Platinum?",
		Options: []answer.Option{
			{Label: "Classic", AnswerText: "Classic annual fee is BDT 500.", MatchKeys: []string{"classic"}},
			{Label: "Gold", AnswerText: "Gold annual fee is BDT 1,500.", MatchKeys: []string{"gold"}},
			{Label: "Platinum", AnswerText: "Platinum annual fee is BDT 2,500.", MatchKeys: []string{"platinum"}},
		},
	}
	fee := &fakeFee{prompt: prompt}
	o := newTestOrchestrator(fee, &fakeLocation{}, &fakeDirectory{}, &fakeRetrieval{}, &fakeGenerative{}, &fakeMemory{})

	ctx := context.Background()
	u := Utterance{Query: "VISA supplementary card annual fee", SessionID: "s1", ConversationKey: "c1"}

	ch1, err := o.HandleTurn(ctx, u)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	text1, _ := drain(t, ch1)
	if text1 != prompt.PromptText {
		t.Fatalf("expected the disambiguation prompt verbatim, got %q", text1)
	}

	// Turn 2: a stopword-only reply must reprompt, not resolve.
	ch2, err := o.HandleTurn(ctx, Utterance{Query: "per", SessionID: "s1", ConversationKey: "c1"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	text2, _ := drain(t, ch2)
	if text2 != prompt.PromptText {
		t.Fatalf("expected a reprompt of the original text, got %q", text2)
	}

	// Turn 3: numeric selection resolves to option 2 (Gold) and clears state.
	ch3, err := o.HandleTurn(ctx, Utterance{Query: "2", SessionID: "s1", ConversationKey: "c1"})
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	text3, _ := drain(t, ch3)
	if text3 != "Gold annual fee is BDT 1,500." {
		t.Fatalf("expected Gold's answer, got %q", text3)
	}

	// State must now be cleared: a follow-up numeric reply is treated as a
	// fresh turn, not as another selection.
	ch4, err := o.HandleTurn(ctx, Utterance{Query: "2", SessionID: "s1", ConversationKey: "c1"})
	if err != nil {
		t.Fatalf("turn 4: %v", err)
	}
	text4, _ := drain(t, ch4)
	if text4 == "Gold annual fee is BDT 1,500." {
		t.Fatal("disambiguation state should have been cleared after resolution")
	}
}

// Turns on the same conversation key must not interleave: the
// per-conversation-key mutex enforces arrival order.
func TestHandleTurn_SameConversationKeySerialized(t *testing.T) {
	gen := &fakeGenerative{reply: "ok"}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, &fakeDirectory{}, &fakeRetrieval{}, gen, &fakeMemory{})

	ctx := context.Background()
	u := Utterance{Query: "hi", SessionID: "s1", ConversationKey: "same-key"}

	ch1, err := o.HandleTurn(ctx, u)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	ch2, err := o.HandleTurn(ctx, u)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	drain(t, ch1)
	drain(t, ch2)
	if gen.calls != 2 {
		t.Fatalf("expected both turns to complete, got %d generative calls", gen.calls)
	}
}

// Validation: an empty query is rejected before any collaborator is
// consulted, and no turn is persisted.
func TestHandleTurn_EmptyQueryValidationError(t *testing.T) {
	mem := &fakeMemory{}
	o := newTestOrchestrator(&fakeFee{}, &fakeLocation{}, &fakeDirectory{}, &fakeRetrieval{}, &fakeGenerative{}, mem)

	_, err := o.HandleTurn(context.Background(), Utterance{Query: "   ", SessionID: "s1"})
	if err == nil {
		t.Fatal("expected a validation error for an empty query")
	}
	class, ok := aierrors.ClassOf(err)
	if !ok || class != aierrors.ClassValidation {
		t.Fatalf("expected ClassValidation, got %v", err)
	}
	if len(mem.records) != 0 {
		t.Fatalf("a validation error must not persist a turn, got %+v", mem.records)
	}
}
