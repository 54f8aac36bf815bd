package disambiguation

import "testing"

func cardOptions() []Option {
	return []Option{
		{Index: 1, DisplayName: "VISA Classic", CanonicalID: "visa-classic", MatchKeys: []string{"VISA Classic", "Classic"}},
		{Index: 2, DisplayName: "VISA Gold", CanonicalID: "visa-gold", MatchKeys: []string{"VISA Gold", "Gold"}},
		{Index: 3, DisplayName: "VISA Platinum", CanonicalID: "visa-platinum", MatchKeys: []string{"VISA Platinum", "Platinum"}},
	}
}

func TestResolveNumericSelection(t *testing.T) {
	outcome, opt := Resolve("2", cardOptions())
	if outcome != OutcomeResolved {
		t.Fatalf("expected RESOLVED, got %v", outcome)
	}
	if opt.CanonicalID != "visa-gold" {
		t.Fatalf("expected option 2 (gold), got %q", opt.CanonicalID)
	}
}

func TestResolveNumericSelectionWithSurroundingText(t *testing.T) {
	outcome, opt := Resolve("the 3rd one, number 3", cardOptions())
	if outcome != OutcomeResolved {
		t.Fatalf("expected RESOLVED, got %v", outcome)
	}
	if opt.CanonicalID != "visa-platinum" {
		t.Fatalf("expected option 3, got %q", opt.CanonicalID)
	}
}

func TestResolveNumericOutOfRangeFallsBackToTokens(t *testing.T) {
	// "7" exceeds the option count, so the numeric path must not fire; the
	// token "gold" still resolves uniquely.
	outcome, opt := Resolve("7 gold", cardOptions())
	if outcome != OutcomeResolved || opt.CanonicalID != "visa-gold" {
		t.Fatalf("expected gold via token match, got %v %+v", outcome, opt)
	}
}

func TestResolveTokenMatchIsCaseInsensitive(t *testing.T) {
	outcome, opt := Resolve("PLATINUM please", cardOptions())
	if outcome != OutcomeResolved {
		t.Fatalf("expected RESOLVED, got %v", outcome)
	}
	if opt.CanonicalID != "visa-platinum" {
		t.Fatalf("expected platinum, got %q", opt.CanonicalID)
	}
}

func TestResolveStopwordOnlyReprompts(t *testing.T) {
	// "per" is a stopword and "fee card" are both stopwords too; nothing
	// usable remains, so the state machine must reprompt.
	for _, utterance := range []string{"per", "fee card", "the annual fee"} {
		outcome, opt := Resolve(utterance, cardOptions())
		if outcome != OutcomeReprompted || opt != nil {
			t.Fatalf("Resolve(%q): expected REPROMPTED with no option, got %v %+v", utterance, outcome, opt)
		}
	}
}

func TestResolveShortTokensIgnored(t *testing.T) {
	outcome, _ := Resolve("ok go", cardOptions())
	if outcome != OutcomeReprompted {
		t.Fatalf("tokens under 3 chars must not match, got %v", outcome)
	}
}

func TestResolveTieReprompts(t *testing.T) {
	// "visa" appears in every option's match keys, so all three tie and the
	// resolution is ambiguous.
	outcome, opt := Resolve("visa", cardOptions())
	if outcome != OutcomeReprompted || opt != nil {
		t.Fatalf("expected REPROMPTED on a three-way tie, got %v %+v", outcome, opt)
	}
}

func TestResolveStrictMajorityWins(t *testing.T) {
	// "visa gold" scores 2 for gold and 1 for the others; gold wins because
	// its score is strictly higher.
	outcome, opt := Resolve("visa gold", cardOptions())
	if outcome != OutcomeResolved || opt.CanonicalID != "visa-gold" {
		t.Fatalf("expected gold by strict majority, got %v %+v", outcome, opt)
	}
}

func TestResolveNumericTakesPrecedenceOverTokens(t *testing.T) {
	// "1" selects the first option even though "platinum" would match the
	// third.
	outcome, opt := Resolve("1 platinum", cardOptions())
	if outcome != OutcomeResolved || opt.CanonicalID != "visa-classic" {
		t.Fatalf("expected numeric selection to win, got %v %+v", outcome, opt)
	}
}
