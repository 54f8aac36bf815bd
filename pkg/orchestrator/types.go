// Package orchestrator implements the per-turn pipeline: classification,
// disambiguation, dispatch, rendering, persistence, and generative
// streaming for one turn.
package orchestrator

import (
	"context"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/directory"
	"github.com/ebl-digital/chat-orchestrator/pkg/generative"
	"github.com/ebl-digital/chat-orchestrator/pkg/retrieval"
)

// Utterance is one incoming turn: the raw message plus a
// session identifier and a conversation key. The conversation key is a
// stable derivative used only for disambiguation; the session identifier
// is used for memory.
type Utterance struct {
	Query           string
	SessionID       string
	ConversationKey string
	KnowledgeBase   string // optional override from the request body
}

// ChunkType identifies the kind of a streamed unit.
type ChunkType string

const (
	ChunkDelta ChunkType = "delta"
	ChunkDone  ChunkType = "done"
	ChunkError ChunkType = "error"
)

// Chunk is one unit handed to the HTTP surface. Sources is only populated
// on the terminal ChunkDone, which the HTTP layer encodes as the trailing
// sources sentinel.
type Chunk struct {
	Type    ChunkType
	Delta   string
	Sources []string
	Err     error
}

// FeeClient is the subset of fee.Client the orchestrator depends on.
type FeeClient interface {
	Query(ctx context.Context, utterance string) (answer.RenderedAnswer, *answer.Prompt, error)
	ResolveSelection(ctx context.Context, promptContext map[string]string, params map[string]string) (answer.RenderedAnswer, *answer.Prompt, error)
}

// LocationClient is the subset of location.Client the orchestrator depends on.
type LocationClient interface {
	Query(ctx context.Context, utterance string) (answer.RenderedAnswer, error)
}

// DirectoryEngine is directory.Engine, restated here so orchestrator's
// dependency list is self-contained.
type DirectoryEngine = directory.Engine

// RetrievalClient is the subset of retrieval.Client the orchestrator
// depends on.
type RetrievalClient interface {
	Retrieve(ctx context.Context, utterance, knowledgeBase string) (retrieval.Result, error)
}

// GenerativeClient is the subset of generative.Client the orchestrator
// depends on.
type GenerativeClient interface {
	Stream(ctx context.Context, req generative.Request) (<-chan generative.Event, error)
}
