package generative

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

// OpenAIProvider is the fallback provider, used when the primary
// Anthropic provider fails. Only the Chat Completions streaming path is
// wired.
type OpenAIProvider struct {
	client openai.Client
	log    zerolog.Logger
}

func NewOpenAIProvider(apiKey string, log zerolog.Logger) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: client, log: log.With().Str("provider", "openai").Logger()}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		messages := []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(composeSystemPrompt(req)),
		}
		for _, t := range req.Transcript {
			switch t.Role {
			case RoleUser:
				messages = append(messages, openai.UserMessage(t.Content))
			case RoleAssistant:
				messages = append(messages, openai.AssistantMessage(t.Content))
			}
		}
		messages = append(messages, openai.UserMessage(req.UserMessage))

		params := openai.ChatCompletionNewParams{
			Model:    req.Model,
			Messages: messages,
		}
		if req.Temperature > 0 {
			params.Temperature = openai.Float(req.Temperature)
		}

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 {
				delta := chunk.Choices[0].Delta.Content
				if delta != "" {
					events <- Event{Type: EventDelta, Delta: delta}
				}
			}
		}
		if err := stream.Err(); err != nil {
			p.log.Warn().Err(err).Msg("openai stream ended with error")
			events <- Event{Type: EventError, Err: err}
			return
		}
		events <- Event{Type: EventComplete}
	}()

	return events, nil
}
