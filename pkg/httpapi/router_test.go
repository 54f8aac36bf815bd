package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/cachekv"
	"github.com/ebl-digital/chat-orchestrator/pkg/directory"
	"github.com/ebl-digital/chat-orchestrator/pkg/disambiguation"
	"github.com/ebl-digital/chat-orchestrator/pkg/generative"
	"github.com/ebl-digital/chat-orchestrator/pkg/orchestrator"
	"github.com/ebl-digital/chat-orchestrator/pkg/retrieval"
	"github.com/ebl-digital/chat-orchestrator/pkg/sessionmemory"
)

type stubFee struct{}

func (stubFee) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, *answer.Prompt, error) {
	return answer.RenderedAnswer{}, nil, nil
}
func (stubFee) ResolveSelection(ctx context.Context, promptContext, params map[string]string) (answer.RenderedAnswer, *answer.Prompt, error) {
	return answer.RenderedAnswer{}, nil, nil
}

type stubLocation struct{}

func (stubLocation) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, error) {
	return answer.RenderedAnswer{}, nil
}

type stubDirectory struct{}

func (stubDirectory) Search(ctx context.Context, term string, limit int) ([]directory.Employee, error) {
	return nil, nil
}

type stubRetrieval struct{}

func (stubRetrieval) Retrieve(ctx context.Context, utterance, kb string) (retrieval.Result, error) {
	return retrieval.Result{Context: "stub context", References: []string{"stub-ref"}}, nil
}

type stubGenerative struct{ reply string }

func (s stubGenerative) Stream(ctx context.Context, req generative.Request) (<-chan generative.Event, error) {
	ch := make(chan generative.Event, 2)
	ch <- generative.Event{Type: generative.EventDelta, Delta: s.reply}
	ch <- generative.Event{Type: generative.EventComplete}
	close(ch)
	return ch, nil
}

type stubMemory struct{}

func (stubMemory) Append(ctx context.Context, rec sessionmemory.TurnRecord) error { return nil }
func (stubMemory) Read(ctx context.Context, sessionID string, limit int) ([]sessionmemory.TurnRecord, error) {
	return nil, nil
}

func newTestServer() *Server {
	kv := cachekv.NewMemoryStore()
	disambigStore := disambiguation.NewStore(kv, time.Minute, zerolog.Nop())
	orch := orchestrator.New(
		stubFee{}, stubLocation{}, stubDirectory{}, stubRetrieval{}, stubGenerative{reply: "hello from the bot"},
		stubMemory{}, disambigStore,
		orchestrator.Config{DefaultKB: "general", GenerativeModel: "claude-test"},
		zerolog.Nop(),
	)
	return NewServer(orch, nil, zerolog.Nop())
}

func TestHandleChatSyncHappyPath(t *testing.T) {
	srv := newTestServer()
	body, _ := json.Marshal(chatRequest{Query: "what is the weather"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sync", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp chatSyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "hello from the bot" {
		t.Fatalf("response = %q", resp.Response)
	}
	if resp.SessionID == "" {
		t.Fatal("expected generated session id")
	}
}

func TestHandleChatRejectsEmptyQuery(t *testing.T) {
	srv := newTestServer()
	body, _ := json.Marshal(chatRequest{Query: ""})
	req := httptest.NewRequest(http.MethodPost, "/chat/sync", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleChatStreamIncludesSourcesSentinel(t *testing.T) {
	srv := newTestServer()
	body, _ := json.Marshal(chatRequest{Query: "tell me something that needs retrieval"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	text, sources := extractSourcesBlock(rec.Body.String())
	if text == "" {
		t.Fatal("expected non-empty streamed text")
	}
	if len(sources) != 1 || sources[0] != "stub-ref" {
		t.Fatalf("sources = %v", sources)
	}
	if rec.Header().Get(sessionIDHeader) == "" {
		t.Fatal("expected generated session id header")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleHealthDetailedReportsProbeFailure(t *testing.T) {
	kv := cachekv.NewMemoryStore()
	disambigStore := disambiguation.NewStore(kv, time.Minute, zerolog.Nop())
	orch := orchestrator.New(
		stubFee{}, stubLocation{}, stubDirectory{}, stubRetrieval{}, stubGenerative{},
		stubMemory{}, disambigStore, orchestrator.Config{}, zerolog.Nop(),
	)
	probes := map[string]func(context.Context) error{
		"directory": func(context.Context) error { return nil },
		"fee":       func(context.Context) error { return context.DeadlineExceeded },
	}
	srv := NewServer(orch, probes, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp detailedHealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" {
		t.Fatalf("status = %q, want degraded", resp.Status)
	}
	if resp.Collaborators["directory"] != "ok" {
		t.Fatalf("directory probe = %q", resp.Collaborators["directory"])
	}
	if resp.Collaborators["fee"] == "ok" {
		t.Fatal("expected fee probe to report an error")
	}
}
