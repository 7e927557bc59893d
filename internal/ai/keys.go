// keys.go - Round-robin rotation over Gemini API keys to spread quota

package ai

import (
	"strings"
	"sync/atomic"
)

// KeyRotator hands out API keys round-robin. Next is safe for concurrent use.
type KeyRotator struct {
	keys   []string
	cursor atomic.Uint64
}

// NewKeyRotator returns a rotator over the non-blank keys, in order.
// It fails with *ConfigurationError when no key is left.
func NewKeyRotator(keys []string) (*KeyRotator, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, &ConfigurationError{Message: "no Gemini API keys configured (set GEMINI_API_KEYS or API_KEY)"}
	}
	return &KeyRotator{keys: cleaned}, nil
}

// Next returns the key at the cursor and advances it.
func (r *KeyRotator) Next() string {
	n := r.cursor.Add(1) - 1
	return r.keys[n%uint64(len(r.keys))]
}

// Len returns the number of keys in rotation.
func (r *KeyRotator) Len() int {
	return len(r.keys)
}
