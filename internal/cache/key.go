// Package cache provides a memoizing get-or-compute layer over pluggable
// key-value stores with per-entry expiry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// maxKeyLength is the longest key passed through verbatim. Most backends
// impose key-length limits around this size; longer keys collapse to a hash.
const maxKeyLength = 250

// BuildKey derives a deterministic cache key from a prefix and a named
// parameter set. Pairs are sorted by name and encoded canonically, so the
// same logical parameters produce the same key regardless of the order they
// were supplied in, across process runs. Keys whose serialized form exceeds
// 250 characters become "{prefix}:{sha256-hex}" of the full serialized key.
func BuildKey(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]any, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]any{name, params[name]})
	}

	encoded, err := json.Marshal(pairs)
	if err != nil {
		// Unserializable parameter values fall back to their formatted
		// form, which is still deterministic for a fixed value set.
		encoded = []byte(fmt.Sprintf("%v", pairs))
	}

	key := prefix + ":" + string(encoded)
	if len(key) > maxKeyLength {
		sum := sha256.Sum256([]byte(key))
		return prefix + ":" + hex.EncodeToString(sum[:])
	}
	return key
}
