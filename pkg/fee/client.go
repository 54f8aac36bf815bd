package fee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/shared/httputil"
)

// calculateRequest/calculateResponse mirror the fee service's calculate()
// contract.
type calculateRequest struct {
	ChargeType  ChargeType `json:"charge_type"`
	Category    string     `json:"category"`
	Network     string     `json:"network"`
	Product     string     `json:"product"`
	ProductLine string     `json:"product_line,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	UsageIndex  *int       `json:"usage_index,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	AsOfDate    string     `json:"as_of_date"`
}

type calculateResponse struct {
	Status               Status        `json:"status"`
	FeeAmount            float64       `json:"fee_amount"`
	FeeCurrency          string        `json:"fee_currency"`
	FeeBasis             string        `json:"fee_basis"`
	RuleID               string        `json:"rule_id"`
	RulePriority         int           `json:"rule_priority"`
	EffectiveFrom        string        `json:"effective_from"`
	EffectiveTo          string        `json:"effective_to"`
	Remarks              string        `json:"remarks"`
	Condition            ConditionKind `json:"condition"`
	FreeEntitlementCount int           `json:"free_entitlement_count"`
	NoteReference        string        `json:"note_reference"`
}

// retailChargesRequest/retailChargesResponse mirror the fee service's
// retail-asset charge query. Unlike calculate(), the service returns the
// matching rule rows and the client selects and evaluates locally.
type retailChargesRequest struct {
	AsOfDate    string     `json:"as_of_date"`
	LoanProduct string     `json:"loan_product"`
	ChargeType  ChargeType `json:"charge_type,omitempty"`
}

type retailChargesResponse struct {
	Status  Status            `json:"status"`
	Charges []retailChargeRow `json:"charges"`
}

type retailChargeRow struct {
	RuleID               string        `json:"rule_id"`
	Priority             int           `json:"priority"`
	Category             string        `json:"category"`
	Network              string        `json:"network"`
	Product              string        `json:"product"`
	ProductLine          string        `json:"product_line"`
	ChargeType           ChargeType    `json:"charge_type"`
	Condition            ConditionKind `json:"condition"`
	FeeValue             float64       `json:"fee_value"`
	FeeCurrency          string        `json:"fee_currency"`
	FeeBasis             string        `json:"fee_basis"`
	PercentRate          float64       `json:"percent_rate"`
	FixedMinimum         float64       `json:"fixed_minimum"`
	FreeEntitlementCount int           `json:"free_entitlement_count"`
	TieredSteps          []tierStepRow `json:"tiered_steps"`
	NoteReference        string        `json:"note_reference"`
	EffectiveFrom        string        `json:"effective_from"`
	EffectiveTo          string        `json:"effective_to"`
}

type tierStepRow struct {
	Label     string   `json:"label"`
	Rate      float64  `json:"rate"`
	IsPercent bool     `json:"is_percent"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
}

func (r retailChargeRow) toRule() Rule {
	rule := Rule{
		RuleID:               r.RuleID,
		Priority:             r.Priority,
		Category:             CardCategory(r.Category),
		Network:              r.Network,
		Product:              r.Product,
		ProductLine:          r.ProductLine,
		ChargeType:           r.ChargeType,
		Condition:            r.Condition,
		FeeValue:             r.FeeValue,
		FeeCurrency:          r.FeeCurrency,
		FeeBasis:             r.FeeBasis,
		PercentRate:          r.PercentRate,
		FixedMinimum:         r.FixedMinimum,
		FreeEntitlementCount: r.FreeEntitlementCount,
		NoteReference:        r.NoteReference,
	}
	for _, s := range r.TieredSteps {
		rule.TieredSteps = append(rule.TieredSteps, TierStep{Label: s.Label, Rate: s.Rate, IsPercent: s.IsPercent, Min: s.Min, Max: s.Max})
	}
	if t, err := time.Parse("2006-01-02", r.EffectiveFrom); err == nil {
		rule.EffectiveFrom = t
	}
	if t, err := time.Parse("2006-01-02", r.EffectiveTo); err == nil {
		rule.EffectiveTo = t
	}
	return rule
}

// Client is the HTTP-backed fee client: a base URL plus a bounded
// per-call timeout, with requests sent through pkg/shared/httputil rather
// than a held *http.Client.
type Client struct {
	baseURL     string
	timeoutSecs int
	logger      zerolog.Logger
}

// New builds a fee client. A non-positive timeoutSecs falls back to a
// 5-second default.
func New(baseURL string, timeoutSecs int, logger zerolog.Logger) *Client {
	if timeoutSecs <= 0 {
		timeoutSecs = 5
	}
	return &Client{baseURL: baseURL, timeoutSecs: timeoutSecs, logger: logger.With().Str("component", "fee_client").Logger()}
}

// Query translates an utterance into a RenderedAnswer (or an
// AWAITING_SELECTION prompt), issuing at most one service call per rule
// family; a free-then-paid charge type makes one more calculate() call to
// price the paid tier.
func (c *Client) Query(ctx context.Context, utterance string) (answer.RenderedAnswer, *answer.Prompt, error) {
	extraction := Extract(utterance)
	if extraction.Ambiguous {
		prompt := BuildPrompt(extraction)
		return answer.RenderedAnswer{}, &prompt, nil
	}
	if extraction.Query.ProductLine != "" {
		ans, err := c.queryRetailAsset(ctx, extraction.Query)
		return ans, nil, err
	}
	return c.resolve(ctx, extraction.Query)
}

// queryRetailAsset answers a loan-product charge query: fetch the active
// rule rows for the loan product, select the winning rule, and evaluate
// its condition locally.
func (c *Client) queryRetailAsset(ctx context.Context, q Query) (answer.RenderedAnswer, error) {
	asOf := q.AsOfDate
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	req := retailChargesRequest{
		AsOfDate:    asOf.Format("2006-01-02"),
		LoanProduct: q.ProductLine,
		ChargeType:  q.ChargeType,
	}
	data, status, err := httputil.PostJSON(ctx, c.baseURL+"/fees/retail-asset-charges", nil, req, c.timeoutSecs)
	if err != nil {
		return answer.RenderedAnswer{}, aierrors.New(aierrors.ClassAuthoritativeError, fmt.Errorf("fee service status %d: %w", status, err))
	}
	var resp retailChargesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return answer.RenderedAnswer{}, aierrors.New(aierrors.ClassAuthoritativeError, err)
	}
	if resp.Status == StatusNoRuleFound || len(resp.Charges) == 0 {
		return RenderNotFound(), nil
	}

	rules := make([]Rule, 0, len(resp.Charges))
	for _, row := range resp.Charges {
		rules = append(rules, row.toRule())
	}
	rule, ok := SelectRule(rules, q)
	if !ok {
		return RenderNotFound(), nil
	}
	amount, currency, err := Evaluate(*rule, q, rules)
	if err != nil {
		var note *ErrNoteResolutionRequired
		if errors.As(err, &note) {
			return answer.Authoritative("That charge depends on a case-specific note (" + note.NoteReference + ") and can't be quoted automatically. Please contact the branch for an exact figure."), nil
		}
		return answer.RenderedAnswer{}, aierrors.New(aierrors.ClassAuthoritativeError, err)
	}
	return RenderDetailed(*rule, amount, currency, rule.FeeBasis, ""), nil
}

// ResolveSelection re-issues the fee query after a disambiguation option
// has been picked: it reconstructs the base query from the prompt's
// carry-over Context and merges in the chosen Option's Params.
func (c *Client) ResolveSelection(ctx context.Context, promptContext map[string]string, params map[string]string) (answer.RenderedAnswer, *answer.Prompt, error) {
	base := queryFromContext(promptContext)
	if v, ok := params["network"]; ok {
		base.Network = v
	}
	if v, ok := params["category"]; ok {
		base.Category = CardCategory(v)
	}
	if v, ok := params["product"]; ok {
		base.Product = v
	}
	return c.resolve(ctx, base)
}

func (c *Client) resolve(ctx context.Context, q Query) (answer.RenderedAnswer, *answer.Prompt, error) {
	resp, err := c.calculate(ctx, q)
	if err != nil {
		return answer.RenderedAnswer{}, nil, err
	}

	switch resp.Status {
	case StatusNoRuleFound:
		return RenderNotFound(), nil, nil
	case StatusInvalidRequest:
		return RenderNotFound(), nil, nil
	case StatusFXRateRequired:
		return answer.Authoritative("That fee requires an FX rate that isn't available right now. Please try again shortly."), nil, nil
	case StatusRequiresNoteResolution:
		return answer.Authoritative("That fee depends on a case-specific note (" + resp.Remarks + ") and can't be quoted automatically. Please contact the branch for an exact figure."), nil, nil
	case StatusCalculated:
		// fall through
	default:
		return answer.RenderedAnswer{}, nil, aierrors.New(aierrors.ClassAuthoritativeError, fmt.Errorf("fee service returned unknown status %q", resp.Status))
	}

	if freeThenPaidChargeTypes[q.ChargeType] && resp.Condition == ConditionFreeUpToN {
		paidIndex := resp.FreeEntitlementCount + 1
		paidQuery := q
		paidQuery.UsageIndex = &paidIndex
		paidResp, err := c.calculate(ctx, paidQuery)
		if err != nil {
			return answer.RenderedAnswer{}, nil, err
		}
		freeRule := Rule{ChargeType: q.ChargeType, Network: q.Network, Product: q.Product, FreeEntitlementCount: resp.FreeEntitlementCount, FeeCurrency: resp.FeeCurrency}
		return RenderBothTiers(freeRule, paidResp.FeeAmount, paidResp.FeeCurrency), nil, nil
	}

	rule := Rule{ChargeType: q.ChargeType, Network: q.Network, Product: q.Product}
	return RenderDetailed(rule, resp.FeeAmount, resp.FeeCurrency, resp.FeeBasis, resp.Remarks), nil, nil
}

func (c *Client) calculate(ctx context.Context, q Query) (calculateResponse, error) {
	asOf := q.AsOfDate
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	req := calculateRequest{
		ChargeType:  q.ChargeType,
		Category:    string(q.Category),
		Network:     q.Network,
		Product:     q.Product,
		ProductLine: q.ProductLine,
		Amount:      q.Amount,
		UsageIndex:  q.UsageIndex,
		Currency:    q.Currency,
		AsOfDate:    asOf.Format("2006-01-02"),
	}
	data, status, err := httputil.PostJSON(ctx, c.baseURL+"/fees/calculate", nil, req, c.timeoutSecs)
	if err != nil {
		return calculateResponse{}, aierrors.New(aierrors.ClassAuthoritativeError, fmt.Errorf("fee service status %d: %w", status, err))
	}

	var out calculateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return calculateResponse{}, aierrors.New(aierrors.ClassAuthoritativeError, err)
	}
	return out, nil
}
