// Package arbiter decides which reply is surfaced to the user and whether a
// human handoff is offered.
package arbiter

import (
	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/faq"
	"sathi-support/backend/internal/match"
)

// Source names where a reply came from.
type Source string

const (
	SourceFAQ              Source = "faq"
	SourceAI               Source = "ai"
	SourceAIWithEscalation Source = "ai_with_escalation"
	SourceError            Source = "error"
)

const (
	// EscalationSentence is appended to AI replies when a handoff is offered.
	EscalationSentence = "I'm not entirely sure about that. Would you like me to connect you to a human support agent who can help you better?"
	// FailureReply is served when the AI backend is unavailable.
	FailureReply = "I apologize, but I'm experiencing technical difficulties. Please try again in a moment, or contact our support team directly."
)

const (
	faqOverrideScore    = 0.95
	faqOverrideAIMax    = 0.7
	escalateAIBelow     = 0.6
	escalateFAQBelow    = 0.5
	escalationSeparator = "\n\n"
)

var uncertaintyPhrases = []string{
	"i don't know",
	"i'm not sure",
	"i can't help",
	"i'm unable to",
	"i don't have information",
	"i'm not certain",
}

// Outcome is the single reply returned to the caller.
type Outcome struct {
	Reply             string  `json:"reply"`
	Confidence        float64 `json:"confidence"`
	Source            Source  `json:"source"`
	EscalationOffered bool    `json:"escalationOffered"`
}

// Decide applies the rules in order; the first one that holds produces the outcome.
// A very confident FAQ match beats a weak AI answer and is never escalated.
func Decide(faqResult *faq.MatchResult, aiResp ai.Response) Outcome {
	if faqResult != nil && faqResult.Entry != nil &&
		faqResult.Score > faqOverrideScore && aiResp.Confidence < faqOverrideAIMax {
		return Outcome{
			Reply:      faqResult.Entry.Answer,
			Confidence: faqResult.Score,
			Source:     SourceFAQ,
		}
	}

	if ShouldEscalate(faqResult, aiResp) {
		return Outcome{
			Reply:             aiResp.Reply + escalationSeparator + EscalationSentence,
			Confidence:        aiResp.Confidence,
			Source:            SourceAIWithEscalation,
			EscalationOffered: true,
		}
	}

	return Outcome{
		Reply:      aiResp.Reply,
		Confidence: aiResp.Confidence,
		Source:     SourceAI,
	}
}

// ShouldEscalate reports whether a human handoff should be offered: the AI is not
// confident, there is no usable FAQ match, or the reply itself admits uncertainty.
func ShouldEscalate(faqResult *faq.MatchResult, aiResp ai.Response) bool {
	if aiResp.Confidence < escalateAIBelow {
		return true
	}
	if faqResult == nil || faqResult.Entry == nil || faqResult.Score < escalateFAQBelow {
		return true
	}
	return match.ContainsAny(aiResp.Reply, uncertaintyPhrases)
}

// Failure is the outcome served when the AI backend could not be reached.
func Failure() Outcome {
	return Outcome{
		Reply:             FailureReply,
		Confidence:        0,
		Source:            SourceError,
		EscalationOffered: true,
	}
}
