package vectorstore

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// encodeVector serializes a vector as a JSON array of float64.
func encodeVector(v []float64) ([]byte, error) {
	if v == nil {
		v = []float64{}
	}
	return json.Marshal(v)
}

// decodeVector parses a JSON array of numbers. Empty vectors are rejected.
func decodeVector(data []byte) ([]float64, error) {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("empty vector")
	}
	return v, nil
}

// encodeMetadata serializes metadata; nil becomes an empty object.
func encodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

// decodeMetadata parses metadata leniently. Missing or malformed input yields an empty map.
func decodeMetadata(data []byte) map[string]any {
	m := map[string]any{}
	if len(data) == 0 {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortLoaded orders records by id so loads from unordered sources are deterministic.
func sortLoaded(recs []LoadedRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ID < recs[j].ID
	})
}
