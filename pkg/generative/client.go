package generative

import (
	"context"

	"github.com/rs/zerolog"
)

// Client streams from a primary provider, switching to a fallback if the
// primary fails before emitting any delta. Once streaming has begun, a
// mid-stream failure is surfaced as an error event rather than silently
// retried; the orchestrator persists whatever partial text was already
// produced.
type Client struct {
	primary  Provider
	fallback Provider
	logger   zerolog.Logger
}

func NewClient(primary, fallback Provider, logger zerolog.Logger) *Client {
	return &Client{primary: primary, fallback: fallback, logger: logger.With().Str("component", "generative_client").Logger()}
}

func (c *Client) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	events, err := c.primary.Stream(ctx, req)
	if err != nil {
		if c.fallback == nil {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("primary", c.primary.Name()).Msg("primary provider failed to start, using fallback")
		return c.fallback.Stream(ctx, req)
	}
	return c.wrapWithFallback(ctx, req, events), nil
}

// wrapWithFallback passes through primary events unless the very first
// event is an error, in which case it switches to the fallback provider
// before any text has reached the caller.
func (c *Client) wrapWithFallback(ctx context.Context, req Request, primary <-chan Event) <-chan Event {
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		first, ok := <-primary
		if !ok {
			return
		}
		if first.Type == EventError && c.fallback != nil {
			c.logger.Warn().Err(first.Err).Str("primary", c.primary.Name()).Msg("primary stream failed before any delta, using fallback")
			fallbackEvents, err := c.fallback.Stream(ctx, req)
			if err != nil {
				out <- Event{Type: EventError, Err: err}
				return
			}
			for e := range fallbackEvents {
				out <- e
			}
			return
		}
		out <- first
		for e := range primary {
			out <- e
		}
	}()
	return out
}
