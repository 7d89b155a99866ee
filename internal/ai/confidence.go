package ai

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	baseConfidence     = 0.8
	safetyPenalty      = 0.3
	shortReplyPenalty  = 0.2
	hedgingPenalty     = 0.1
	shortReplyMinChars = 20
)

var hedgingPhrases = []string{"might", "maybe", "possibly", "not sure", "unclear", "uncertain"}

// estimateConfidence derives a confidence for a backend candidate, which carries no
// usable confidence of its own. Medium or high safety ratings, very short replies
// and hedging language each lower the score.
func estimateConfidence(c candidate) float64 {
	confidence := baseConfidence

	for _, rating := range c.SafetyRatings {
		p := strings.ToUpper(rating.Probability)
		if p == "HIGH" || p == "MEDIUM" {
			confidence -= safetyPenalty
			break
		}
	}

	text := c.text()
	if utf8.RuneCountInString(text) < shortReplyMinChars {
		confidence -= shortReplyPenalty
	}

	lower := strings.ToLower(text)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			confidence -= hedgingPenalty
			break
		}
	}

	return clampFloat(confidence, 0, 1)
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
