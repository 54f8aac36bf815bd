package generative

import "testing"

func TestBuildContextBlockEmptyForSmallTalk(t *testing.T) {
	got := BuildContextBlock("")
	if got != "[context: none (small talk)]" {
		t.Fatalf("unexpected empty context block: %q", got)
	}
}

func TestBuildContextBlockWrapsRetrieval(t *testing.T) {
	got := BuildContextBlock("EBL has 200 branches.")
	if got == "" {
		t.Fatalf("expected non-empty context block")
	}
}

func TestTruncateTranscriptKeepsMostRecentFirst(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "first message"},
		{Role: RoleAssistant, Content: "first reply"},
		{Role: RoleUser, Content: "second message"},
		{Role: RoleAssistant, Content: "second reply"},
	}
	kept := TruncateTranscript(turns, "gpt-4.1", 1000)
	if len(kept) != 4 {
		t.Fatalf("expected all turns kept under a generous budget, got %d", len(kept))
	}
	if kept[0].Content != "first message" {
		t.Fatalf("expected chronological order preserved, got %+v", kept)
	}
}

func TestTruncateTranscriptDropsOldestWhenOverBudget(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "old message that should be dropped because the budget is tiny"},
		{Role: RoleAssistant, Content: "old reply"},
		{Role: RoleUser, Content: "newest message"},
	}
	kept := TruncateTranscript(turns, "gpt-4.1", 5)
	if len(kept) == 0 {
		t.Fatalf("expected at least the newest turn kept")
	}
	if kept[len(kept)-1].Content != "newest message" {
		t.Fatalf("expected newest message retained, got %+v", kept)
	}
}
