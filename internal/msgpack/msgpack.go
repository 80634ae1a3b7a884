// Package msgpack provides canonical MessagePack encoding for filter trees.
// Used to derive stable, hashable keys so equivalent nested filters share
// one batched fetch.
package msgpack

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Canonical serializes a filter tree value into a deterministic byte
// representation: maps are rewritten as key-sorted pair lists before
// encoding, so two structurally equal trees always produce equal bytes.
func Canonical(v any) ([]byte, error) {
	data, err := msgpack.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter key: %w", err)
	}
	return data, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]any, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, []any{k, normalize(t[k])})
		}
		return pairs
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
