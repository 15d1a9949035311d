package similarity

import "strings"

// neutralMood is used for mood names missing from the table.
var neutralMood = []float64{0.5, 0.5, 0.5}

var moodVectors = map[string][]float64{
	"happy":     {0.9, 0.8, 0.2},
	"sad":       {0.1, 0.3, 0.9},
	"energetic": {0.8, 0.9, 0.4},
	"calm":      {0.3, 0.7, 0.8},
	"dark":      {0.2, 0.2, 0.6},
}

// Per-mood score multipliers, all within [0.9, 1.2].
var moodBonuses = map[string]float64{
	"happy":     1.2,
	"energetic": 1.15,
	"chill":     1.1,
	"sad":       0.9,
	"focus":     1.05,
}

// MoodVector maps a mood label to its base context vector.
// Unknown labels map to the neutral midpoint. The returned slice is a copy.
func MoodVector(mood string) []float64 {
	base, ok := moodVectors[strings.ToLower(strings.TrimSpace(mood))]
	if !ok {
		base = neutralMood
	}
	out := make([]float64, len(base))
	copy(out, base)
	return out
}

// KnownMood reports whether mood has its own entry in the vector table.
func KnownMood(mood string) bool {
	_, ok := moodVectors[strings.ToLower(strings.TrimSpace(mood))]
	return ok
}

// MoodBonus returns the score multiplier for mood, 1.0 when unknown or empty.
func MoodBonus(mood string) float64 {
	if b, ok := moodBonuses[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return b
	}
	return 1.0
}

// defaultContext is the fingerprint recorded when no mood is known.
var defaultContext = []float64{0.5, 0.2, 0.7}

// ContextFingerprint returns the context vector stored with an upload and
// used for listeners in discovery. An empty mood yields the default fingerprint.
func ContextFingerprint(mood string) []float64 {
	if strings.TrimSpace(mood) == "" {
		out := make([]float64, len(defaultContext))
		copy(out, defaultContext)
		return out
	}
	return MoodVector(mood)
}
