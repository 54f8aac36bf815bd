package httpapi

import "testing"

func TestEncodeDecodeSourcesBlockRoundTrip(t *testing.T) {
	sources := []string{"kb/faq.md#12", "kb/fees.md#3"}
	block := encodeSourcesBlock(sources)
	buf := "the answer text" + block

	text, got := extractSourcesBlock(buf)
	if text != "the answer text" {
		t.Fatalf("text = %q, want %q", text, "the answer text")
	}
	if len(got) != len(sources) {
		t.Fatalf("sources = %v, want %v", got, sources)
	}
	for i := range sources {
		if got[i] != sources[i] {
			t.Fatalf("sources[%d] = %q, want %q", i, got[i], sources[i])
		}
	}
}

func TestEncodeSourcesBlockEmpty(t *testing.T) {
	if block := encodeSourcesBlock(nil); block != "" {
		t.Fatalf("expected empty block for no sources, got %q", block)
	}
}

func TestExtractSourcesBlockAbsent(t *testing.T) {
	text, sources := extractSourcesBlock("just plain text, no sentinel here")
	if text != "just plain text, no sentinel here" {
		t.Fatalf("text = %q", text)
	}
	if sources != nil {
		t.Fatalf("sources = %v, want nil", sources)
	}
}

// TestSourcesBlockSurvivesChunking verifies the sentinel parses correctly
// even when the stream is split across arbitrary chunk boundaries, by
// reassembling three bytes at a time before attempting extraction, mirroring
// how a client must buffer.
func TestSourcesBlockSurvivesChunking(t *testing.T) {
	full := "partial answer" + encodeSourcesBlock([]string{"a", "b", "c"})

	var reassembled string
	for i := 0; i < len(full); i += 3 {
		end := i + 3
		if end > len(full) {
			end = len(full)
		}
		reassembled += full[i:end]
	}

	text, sources := extractSourcesBlock(reassembled)
	if text != "partial answer" {
		t.Fatalf("text = %q", text)
	}
	if len(sources) != 3 {
		t.Fatalf("sources = %v", sources)
	}
}
