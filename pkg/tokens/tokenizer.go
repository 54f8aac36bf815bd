// Package tokens provides tiktoken-backed token counting for the
// generative client's transcript truncation, with a per-model encoder
// cache.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*tiktoken.Tiktoken)
)

// GetEncoder returns a cached tiktoken encoder for model, falling back to
// cl100k_base for models tiktoken does not recognize directly (Anthropic
// models included; their token counts are an approximation used only for
// transcript budgeting, never for billing).
func GetEncoder(model string) (*tiktoken.Tiktoken, error) {
	cacheMu.RLock()
	if enc, ok := cache[model]; ok {
		cacheMu.RUnlock()
		return enc, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if enc, ok := cache[model]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	cache[model] = enc
	return enc, nil
}

// Count returns the approximate token count of text under model's encoder.
func Count(text, model string) (int, error) {
	enc, err := GetEncoder(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
