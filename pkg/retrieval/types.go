// Package retrieval implements the thin client over the knowledge
// retrieval service, with cache integration and semaphore-bounded
// concurrency toward the backend.
package retrieval

// Entity, Relationship and Chunk mirror the sections of a raw retrieval
// service response that get stitched into context when the service does
// not return a ready-made "response" string.
type Entity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Relationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

type Chunk struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// RawResponse is the retrieval service's wire shape.
type RawResponse struct {
	Response      string         `json:"response"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Chunks        []Chunk        `json:"chunks"`
	References    []string       `json:"references"`
}

// Result is what the orchestrator consumes: a single formatted context
// block, cached as-is under the utterance/kb fingerprint, plus the source
// references the HTTP surface reports in the trailing sentinel block.
type Result struct {
	Context    string   `json:"context"`
	References []string `json:"references"`
}
