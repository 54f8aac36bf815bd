package generative

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// AnthropicProvider streams completions from Anthropic's Messages API.
// Plain text only: this domain never invokes tools.
type AnthropicProvider struct {
	client anthropic.Client
	log    zerolog.Logger
}

func NewAnthropicProvider(apiKey string, log zerolog.Logger) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client, log: log.With().Str("provider", "anthropic").Logger()}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(req.Model),
			MaxTokens: 1024,
			Messages:  toAnthropicMessages(req),
		}
		if req.SystemPrompt != "" {
			params.System = []anthropic.TextBlockParam{{Text: composeSystemPrompt(req)}}
		}
		if req.Temperature > 0 {
			params.Temperature = anthropic.Float(req.Temperature)
		}

		stream := p.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()
			switch evt := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok {
					events <- Event{Type: EventDelta, Delta: delta.Text}
				}
			}
		}
		if err := stream.Err(); err != nil {
			p.log.Warn().Err(err).Msg("anthropic stream ended with error")
			events <- Event{Type: EventError, Err: err}
			return
		}
		events <- Event{Type: EventComplete}
	}()

	return events, nil
}

func composeSystemPrompt(req Request) string {
	return req.SystemPrompt + "\n\n" + BuildContextBlock(req.ContextBlock)
}

func toAnthropicMessages(req Request) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(req.Transcript)+1)
	for _, t := range req.Transcript {
		switch t.Role {
		case RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)))
	return msgs
}
