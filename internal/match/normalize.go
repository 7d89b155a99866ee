package match

import "strings"

// MessageProfile captures the normalization output for a user chat message.
type MessageProfile struct {
	Original   string
	Normalized string
	Tokens     []string
}

// NormalizeMessage lowercases and trims the message and splits it into whitespace
// delimited tokens. Punctuation is kept attached to tokens.
func NormalizeMessage(input string) MessageProfile {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return MessageProfile{
		Original:   input,
		Normalized: normalized,
		Tokens:     strings.Fields(normalized),
	}
}

// Empty reports whether nothing is left after normalization.
func (p MessageProfile) Empty() bool {
	return p.Normalized == ""
}

// ContainsAny reports whether the lowercased text contains any of the phrases.
// Phrases are expected in lowercase.
func ContainsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// NormalizeKeywords lowercases, trims and de-duplicates keywords, preserving the
// first-seen order.
func NormalizeKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		out = appendUnique(out, kw)
	}
	return out
}

func appendUnique(s []string, v string) []string {
	if v == "" {
		return s
	}
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}
