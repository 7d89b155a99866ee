package faq

import (
	"strings"

	"sathi-support/backend/internal/match"
)

const (
	// AcceptThreshold is the score a match must strictly exceed to be served
	// directly as an FAQ answer.
	AcceptThreshold = 0.8

	exactQuestionBonus = 1.0
	keywordBonus       = 0.2
	partialTokenBonus  = 0.1
)

// MatchResult is the best FAQ candidate for a message.
type MatchResult struct {
	Entry *Entry  `json:"entry,omitempty"`
	Score float64 `json:"score"`
}

// Found reports whether any entry scored above zero.
func (r MatchResult) Found() bool {
	return r.Entry != nil
}

// Accepted reports whether the match is confident enough for FAQ-only consumers.
func (r MatchResult) Accepted() bool {
	return r.Entry != nil && r.Score > AcceptThreshold
}

// Match scores every entry of the table against the message and returns the
// highest scoring one. The first entry wins on ties. When nothing scores above
// zero, or the table is empty, the result carries no entry and a zero score.
func Match(message string, table *Table) MatchResult {
	profile := match.NormalizeMessage(message)
	if profile.Empty() || table.Len() == 0 {
		return MatchResult{}
	}

	var best MatchResult
	for i := range table.entries {
		score := scoreEntry(profile, &table.entries[i])
		if score > best.Score {
			entry := table.entries[i]
			entry.Keywords = append([]string(nil), entry.Keywords...)
			best = MatchResult{Entry: &entry, Score: score}
		}
	}
	return best
}

// Match is a convenience wrapper around the package level Match.
func (t *Table) Match(message string) MatchResult {
	return Match(message, t)
}

// scoreEntry accumulates the exact question, keyword and partial token bonuses
// and clamps the total to 1.0. Keywords are already lowercase.
func scoreEntry(profile match.MessageProfile, entry *Entry) float64 {
	message := profile.Normalized
	score := 0.0

	if strings.Contains(message, strings.ToLower(entry.Question)) {
		score += exactQuestionBonus
	}

	for _, keyword := range entry.Keywords {
		if strings.Contains(message, keyword) {
			score += keywordBonus
		}
	}

	for _, token := range profile.Tokens {
		for _, keyword := range entry.Keywords {
			if strings.Contains(keyword, token) || strings.Contains(token, keyword) {
				score += partialTokenBonus
			}
		}
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
