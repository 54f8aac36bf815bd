package httpapi

import (
	"encoding/json"
	"fmt"
)

// sourcesSentinelOpen and sourcesSentinelClose bracket the optional trailing
// sources block on the /chat stream. The block is written as one buffered
// string rather than interleaved with deltas, so it is never itself split
// across a write; a client reading in arbitrary-sized chunks is the one
// responsible for buffering until both markers are seen.
const (
	sourcesSentinelOpen  = "__SOURCES__"
	sourcesSentinelClose = "__SOURCES__"
)

// encodeSourcesBlock renders the trailing sentinel block for a turn's
// reference list. It returns an empty string when there are no sources,
// since the block is optional.
func encodeSourcesBlock(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	raw, err := json.Marshal(sourcesPayload{Sources: sources})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%s%s", sourcesSentinelOpen, raw, sourcesSentinelClose)
}

// extractSourcesBlock parses a buffer that may end in a sentinel block,
// returning the text with the block stripped and the decoded sources (nil
// if absent or malformed). Used by tests to verify the round trip survives
// arbitrary chunk boundaries. Both markers are the same literal, so the
// close marker is located first by anchoring to the end of buf, then the
// matching open marker is searched for before it.
func extractSourcesBlock(buf string) (string, []string) {
	if !hasSuffix(buf, sourcesSentinelClose) {
		return buf, nil
	}
	closeStart := len(buf) - len(sourcesSentinelClose)
	start := lastIndexBefore(buf, sourcesSentinelOpen, closeStart-1)
	if start == -1 {
		return buf, nil
	}
	afterOpen := start + len(sourcesSentinelOpen)
	var payload sourcesPayload
	if err := json.Unmarshal([]byte(buf[afterOpen:closeStart]), &payload); err != nil {
		return buf, nil
	}
	return buf[:start], payload.Sources
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// lastIndexBefore finds the last occurrence of sub in s that starts at or
// before limit.
func lastIndexBefore(s, sub string, limit int) int {
	last := -1
	for i := 0; i+len(sub) <= len(s) && i <= limit; i++ {
		if s[i:i+len(sub)] == sub {
			last = i
		}
	}
	return last
}
