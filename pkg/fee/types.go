// Package fee implements the fee-schedule client: authoritative,
// verbatim rendering of card and retail-asset charge queries, bypassing
// the generative model on success.
package fee

import "time"

// ChargeType is one of the standardized charge-type tokens (illustrative
// superset; extend the vocabulary, not the matching logic).
type ChargeType string

const (
	ChargeIssuanceAnnualPrimary        ChargeType = "ISSUANCE_ANNUAL_PRIMARY"
	ChargeSupplementaryAnnual          ChargeType = "SUPPLEMENTARY_ANNUAL"
	ChargeSupplementaryFreeEntitlement ChargeType = "SUPPLEMENTARY_FREE_ENTITLEMENT"
	ChargeCashWithdrawalEBLATM         ChargeType = "CASH_WITHDRAWAL_EBL_ATM"
	ChargeLatePayment                  ChargeType = "LATE_PAYMENT"
	ChargeOverlimit                    ChargeType = "OVERLIMIT"
	ChargeCardReplacement              ChargeType = "CARD_REPLACEMENT"
	ChargeProcessingFee                ChargeType = "PROCESSING_FEE"
	ChargeLimitEnhancementFee          ChargeType = "LIMIT_ENHANCEMENT_FEE"
	ChargeEarlySettlementFee           ChargeType = "EARLY_SETTLEMENT_FEE"
)

// CardCategory enumerates the three card categories.
type CardCategory string

const (
	CategoryCredit  CardCategory = "CREDIT"
	CategoryDebit   CardCategory = "DEBIT"
	CategoryPrepaid CardCategory = "PREPAID"
	CategoryAny     CardCategory = "ANY"
)

// ConditionKind is one of the five fee condition kinds.
type ConditionKind string

const (
	ConditionNone            ConditionKind = "NONE"
	ConditionWhicheverHigher ConditionKind = "WHICHEVER_HIGHER"
	ConditionFreeUpToN       ConditionKind = "FREE_UPTO_N"
	ConditionTiered          ConditionKind = "TIERED"
	ConditionNoteBased       ConditionKind = "NOTE_BASED"
)

// Status mirrors the fee service's response status enum.
type Status string

const (
	StatusCalculated             Status = "CALCULATED"
	StatusRequiresNoteResolution Status = "REQUIRES_NOTE_RESOLUTION"
	StatusNoRuleFound            Status = "NO_RULE_FOUND"
	StatusFXRateRequired         Status = "FX_RATE_REQUIRED"
	StatusInvalidRequest         Status = "INVALID_REQUEST"
)

// TierStep is one step of a TIERED condition: Step 1 tier rate, Step 2
// tier-local max, Step 3 global min, Step 4 global max, applied in that
// order.
type TierStep struct {
	Label     string
	Rate      float64
	IsPercent bool
	Min       *float64
	Max       *float64
}

// Rule is a single fee-schedule row as the fee service would describe it.
type Rule struct {
	RuleID               string
	Priority             int
	Category             CardCategory
	Network              string
	Product              string
	ProductLine          string
	ChargeType           ChargeType
	Condition            ConditionKind
	FeeValue             float64
	FeeCurrency          string
	FeeBasis             string
	PercentRate          float64
	FixedMinimum         float64
	FreeEntitlementCount int
	TieredSteps          []TierStep
	NoteReference        string
	EffectiveFrom        time.Time
	EffectiveTo          time.Time
}

// Query is the extracted, structured fee query.
type Query struct {
	ChargeType  ChargeType
	Category    CardCategory
	Network     string
	Product     string
	ProductLine string
	Amount      *float64
	Currency    string
	UsageIndex  *int
	AsOfDate    time.Time
}

// isAny reports whether a category/network/product value is the explicit
// "ANY" wildcard, used by the specificity score.
func isAny(v string) bool {
	return v == "" || v == string(CategoryAny) || v == "ANY"
}
