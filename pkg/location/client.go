package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/shared/httputil"
)

// Client is the HTTP-backed Location Client, sent through
// pkg/shared/httputil like the Fee Client.
type Client struct {
	baseURL     string
	timeoutSecs int
	logger      zerolog.Logger
}

func New(baseURL string, timeoutSecs int, logger zerolog.Logger) *Client {
	if timeoutSecs <= 0 {
		timeoutSecs = 5
	}
	return &Client{baseURL: baseURL, timeoutSecs: timeoutSecs, logger: logger.With().Str("component", "location_client").Logger()}
}

// Query translates the utterance, calls the service, and renders the
// result verbatim. A service error becomes a RenderFailure answer plus a non-nil error the
// orchestrator uses to mark the turn as a location failure, not a
// retrieval fallback.
func (c *Client) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, error) {
	q := Extract(utterance)

	values := url.Values{}
	values.Set("type", string(q.Type))
	if q.City != "" {
		values.Set("city", q.City)
	}
	if q.Region != "" {
		values.Set("region", q.Region)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("offset", strconv.Itoa(q.Offset))

	data, status, err := httputil.GetJSON(ctx, c.baseURL+"/locations?"+values.Encode(), nil, c.timeoutSecs)
	if err != nil {
		return RenderFailure(), aierrors.New(aierrors.ClassAuthoritativeError, fmt.Errorf("location service status %d: %w", status, err))
	}

	var svc ServiceResponse
	if err := json.Unmarshal(data, &svc); err != nil {
		return RenderFailure(), aierrors.New(aierrors.ClassAuthoritativeError, err)
	}

	return Render(q, svc), nil
}
