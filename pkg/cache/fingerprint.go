// Package cache implements the content-addressed look-aside cache for
// retrieval results. It wraps a cachekv.Store and is
// itself a cachekv consumer, not a reimplementation of one.
package cache

import (
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var whitespaceCollapse = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// Fingerprint computes the cache key for an utterance against a knowledge
// base: hash(lowercase(collapse_whitespace(utterance)) || 0x00 || kb),
// using a 128-bit-class hash stored as a printable hex string. Two
// independent xxhash passes over disjoint salts give 128 bits of output
// without reaching for a cryptographic hash the domain does not need.
func Fingerprint(utterance, knowledgeBase string) string {
	normalized := normalize(utterance)
	payload := normalized + "\x00" + knowledgeBase

	h1 := xxhash.Sum64String(payload)
	h2 := xxhash.Sum64String(payload + "\x01")

	buf := make([]byte, 16)
	putUint64(buf[0:8], h1)
	putUint64(buf[8:16], h2)
	return hex.EncodeToString(buf)
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func normalize(utterance string) string {
	collapsed := whitespaceCollapse.Replace(strings.ToLower(strings.TrimSpace(utterance)))
	fields := strings.Fields(collapsed)
	return strings.Join(fields, " ")
}
