package orchestrator

import (
	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/disambiguation"
)

// pendingStateFromPrompt converts a collaborator's answer.Prompt into the
// persisted disambiguation.PendingState shape.
func pendingStateFromPrompt(p answer.Prompt) disambiguation.PendingState {
	opts := make([]disambiguation.Option, 0, len(p.Options))
	for i, o := range p.Options {
		opts = append(opts, disambiguation.Option{
			Index:       i + 1,
			DisplayName: o.Label,
			CanonicalID: o.Label,
			MatchKeys:   o.MatchKeys,
			AnswerText:  o.AnswerText,
			Params:      o.Params,
		})
	}
	return disambiguation.PendingState{
		Kind:       p.Kind,
		PromptText: p.PromptText,
		Options:    opts,
		Context:    p.Context,
	}
}
