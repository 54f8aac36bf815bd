package fee

import "testing"

func TestEvaluateWhicheverHigher(t *testing.T) {
	amount := 10000.0
	rule := Rule{Condition: ConditionWhicheverHigher, PercentRate: 2, FixedMinimum: 300, FeeCurrency: "BDT"}
	got, cur, err := Evaluate(rule, Query{Amount: &amount}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 300 {
		t.Fatalf("expected fixed minimum 300 to win over 2%% of 10000=200, got %v", got)
	}
	if cur != "BDT" {
		t.Fatalf("expected currency preserved, got %q", cur)
	}

	amount = 50000.0
	got, _, err = Evaluate(rule, Query{Amount: &amount}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 1000 {
		t.Fatalf("expected percent 2%% of 50000=1000 to win, got %v", got)
	}
}

func TestEvaluateFreeUpToNWithinEntitlement(t *testing.T) {
	idx := 1
	rule := Rule{RuleID: "free", Condition: ConditionFreeUpToN, FreeEntitlementCount: 2, FeeCurrency: "BDT"}
	got, _, err := Evaluate(rule, Query{UsageIndex: &idx}, []Rule{rule})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected free usage within entitlement, got %v", got)
	}
}

func TestEvaluateFreeUpToNChainsToPaidRule(t *testing.T) {
	idx := 3
	chargeType := ChargeSupplementaryAnnual
	freeRule := Rule{RuleID: "free", ChargeType: chargeType, Priority: 1, Condition: ConditionFreeUpToN, FreeEntitlementCount: 2, FeeCurrency: "BDT"}
	paidRule := Rule{RuleID: "paid", ChargeType: chargeType, Priority: 1, Condition: ConditionNone, FeeValue: 2300, FeeCurrency: "BDT"}
	got, _, err := Evaluate(freeRule, Query{ChargeType: chargeType, UsageIndex: &idx}, []Rule{freeRule, paidRule})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 2300 {
		t.Fatalf("expected chained paid-tier amount 2300, got %v", got)
	}
}

func TestEvaluateTieredAppliesAllFourSteps(t *testing.T) {
	amount := 100000.0
	tierMax := 500.0
	globalMin := 50.0
	globalMax := 400.0
	rule := Rule{
		Condition:   ConditionTiered,
		FeeCurrency: "BDT",
		TieredSteps: []TierStep{
			{Label: "rate", Rate: 1, IsPercent: true}, // 1% of 100000 = 1000
			{Label: "tier_max", Max: &tierMax},         // capped to 500
			{Label: "global_min", Min: &globalMin},
			{Label: "global_max", Max: &globalMax}, // capped to 400
		},
	}
	got, _, err := Evaluate(rule, Query{Amount: &amount}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 400 {
		t.Fatalf("expected final value capped by global max to 400, got %v", got)
	}
}

func TestEvaluateNoteBasedSignalsResolutionRequired(t *testing.T) {
	rule := Rule{Condition: ConditionNoteBased, NoteReference: "NOTE-42"}
	_, _, err := Evaluate(rule, Query{}, nil)
	var noteErr *ErrNoteResolutionRequired
	if err == nil {
		t.Fatalf("expected note-resolution error")
	}
	if !asNoteError(err, &noteErr) {
		t.Fatalf("expected *ErrNoteResolutionRequired, got %T", err)
	}
	if noteErr.NoteReference != "NOTE-42" {
		t.Fatalf("expected note reference preserved, got %q", noteErr.NoteReference)
	}
}

func asNoteError(err error, target **ErrNoteResolutionRequired) bool {
	if e, ok := err.(*ErrNoteResolutionRequired); ok {
		*target = e
		return true
	}
	return false
}
