// Package answer defines the shared output types produced by the
// authoritative collaborators (fee, location, directory) and consumed by
// the turn orchestrator and the disambiguation state machine.
package answer

// RenderedAnswer is the orchestrator's unit of output: text plus
// authoritative-ness plus a suppress-generation flag.
type RenderedAnswer struct {
	Text               string
	IsAuthoritative    bool
	SuppressGeneration bool
}

// Authoritative builds a RenderedAnswer for a verbatim, source-backed
// reply; authoritative answers always suppress the generative model.
func Authoritative(text string) RenderedAnswer {
	return RenderedAnswer{Text: text, IsAuthoritative: true, SuppressGeneration: true}
}

// Option is one selectable branch of an AWAITING_SELECTION prompt. Params
// carries whatever the originating collaborator needs to resolve the
// selection without re-deriving it from free text (e.g. the exact product
// and network to re-query against the fee service).
type Option struct {
	Label      string
	AnswerText string
	MatchKeys  []string
	Params     map[string]string
}

// Prompt is an AWAITING_SELECTION disambiguation prompt: the text shown to
// the user plus the set of Options it offers.
type Prompt struct {
	Kind       string
	PromptText string
	Options    []Option

	// Context is the opaque carry-over: whichever base-query attributes
	// the originating collaborator needs to complete the query once an
	// Option is selected (e.g. charge type and category for a fee query
	// missing only network or product).
	Context map[string]string
}
