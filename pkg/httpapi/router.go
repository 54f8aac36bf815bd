// Package httpapi exposes the turn orchestrator over HTTP:
// POST /chat (streaming), POST /chat/sync (aggregated), GET /health,
// GET /health/detailed. It owns no business logic: every request is
// translated into one orchestrator.HandleTurn/HandleTurnSync call.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/orchestrator"
	"github.com/ebl-digital/chat-orchestrator/pkg/shared/stringutil"
)

const sessionIDHeader = "X-Session-Id"

// Server wires the orchestrator and collaborator health probes behind a
// chi router.
type Server struct {
	turn   *orchestrator.Orchestrator
	probes map[string]func(context.Context) error
	logger zerolog.Logger
}

func NewServer(turn *orchestrator.Orchestrator, probes map[string]func(context.Context) error, logger zerolog.Logger) *Server {
	return &Server{turn: turn, probes: probes, logger: logger.With().Str("component", "httpapi").Logger()}
}

// Router builds the chi.Mux: CORS, request logging and panic recovery
// middleware, then routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequest)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/health/detailed", s.handleHealthDetailed)
	r.Post("/chat", s.handleChat)
	r.Post("/chat/sync", s.handleChatSync)

	return r
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("request handled")
	})
}

func (s *Server) decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, aierrors.New(aierrors.ClassValidation, err))
		return chatRequest{}, false
	}
	if err := getValidator().Struct(req); err != nil {
		writeError(w, aierrors.New(aierrors.ClassValidation, err))
		return chatRequest{}, false
	}
	return req, true
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}
	sessionID := stringutil.FirstNonEmpty(req.SessionID, uuid.NewString())

	chunks, err := s.turn.HandleTurn(r.Context(), orchestrator.Utterance{
		Query:           req.Query,
		SessionID:       sessionID,
		ConversationKey: sessionID,
		KnowledgeBase:   req.KnowledgeBase,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(sessionIDHeader, sessionID)
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	var sources []string
	for chunk := range chunks {
		switch chunk.Type {
		case orchestrator.ChunkDelta:
			w.Write([]byte(chunk.Delta))
			if canFlush {
				flusher.Flush()
			}
		case orchestrator.ChunkDone:
			sources = chunk.Sources
		case orchestrator.ChunkError:
			s.logger.Warn().Err(chunk.Err).Msg("turn ended with an error chunk")
		}
	}
	if block := encodeSourcesBlock(sources); block != "" {
		w.Write([]byte(block))
		if canFlush {
			flusher.Flush()
		}
	}
}

func (s *Server) handleChatSync(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}
	sessionID := stringutil.FirstNonEmpty(req.SessionID, uuid.NewString())

	text, sources, err := s.turn.HandleTurnSync(r.Context(), orchestrator.Utterance{
		Query:           req.Query,
		SessionID:       sessionID,
		ConversationKey: sessionID,
		KnowledgeBase:   req.KnowledgeBase,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatSyncResponse{Response: text, SessionID: sessionID, Sources: sources})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	collaborators := make(map[string]string, len(s.probes))
	for name, probe := range s.probes {
		if err := probe(r.Context()); err != nil {
			collaborators[name] = err.Error()
			status = "degraded"
			continue
		}
		collaborators[name] = "ok"
	}
	writeJSON(w, http.StatusOK, detailedHealthResponse{Status: status, Collaborators: collaborators})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	class, ok := aierrors.ClassOf(err)
	status := http.StatusInternalServerError
	message := "Sorry, something went wrong. Please try again."
	switch {
	case ok && class == aierrors.ClassValidation:
		status = http.StatusBadRequest
		message = "the request was invalid: " + err.Error()
	case ok:
		status = http.StatusBadGateway
		if m, has := aierrors.UserMessages[class]; has {
			message = m
		}
	}
	writeJSON(w, status, map[string]string{"error": message})
}
