package arbiter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/faq"
)

var resetEntry = &faq.Entry{
	Question:       "How do I reset my password?",
	Answer:         "Use the Forgot Password link on the login page.",
	Keywords:       []string{"password", "reset"},
	BaseConfidence: 0.9,
}

func faqMatch(score float64) *faq.MatchResult {
	return &faq.MatchResult{Entry: resetEntry, Score: score}
}

func TestDecide(t *testing.T) {
	confident := "Here is a clear answer to your question about settings."
	tests := []struct {
		name       string
		faq        *faq.MatchResult
		ai         ai.Response
		source     Source
		escalation bool
		reply      string
		confidence float64
	}{
		{"strong faq beats weak ai", faqMatch(0.96), ai.Response{Reply: confident, Confidence: 0.65}, SourceFAQ, false, resetEntry.Answer, 0.96},
		{"strong faq with uncertain ai text still faq", faqMatch(1.0), ai.Response{Reply: "I don't know", Confidence: 0.3}, SourceFAQ, false, resetEntry.Answer, 1.0},
		{"faq at threshold does not override", faqMatch(0.95), ai.Response{Reply: confident, Confidence: 0.65}, SourceAI, false, confident, 0.65},
		{"strong faq but confident ai", faqMatch(1.0), ai.Response{Reply: confident, Confidence: 0.7}, SourceAI, false, confident, 0.7},
		{"no faq and uncertain ai", nil, ai.Response{Reply: "I'm not sure about that", Confidence: 0.9}, SourceAIWithEscalation, true, "", 0.9},
		{"medium faq and low ai", faqMatch(0.9), ai.Response{Reply: confident, Confidence: 0.3}, SourceAIWithEscalation, true, "", 0.3},
		{"weak faq", faqMatch(0.4), ai.Response{Reply: confident, Confidence: 0.8}, SourceAIWithEscalation, true, "", 0.8},
		{"entryless faq treated as absent", &faq.MatchResult{}, ai.Response{Reply: confident, Confidence: 0.8}, SourceAIWithEscalation, true, "", 0.8},
		{"plain ai", faqMatch(0.5), ai.Response{Reply: confident, Confidence: 0.6}, SourceAI, false, confident, 0.6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Decide(tc.faq, tc.ai)
			assert.Equal(t, tc.source, out.Source)
			assert.Equal(t, tc.escalation, out.EscalationOffered)
			assert.InDelta(t, tc.confidence, out.Confidence, 1e-9)
			if tc.escalation {
				assert.True(t, strings.HasPrefix(out.Reply, tc.ai.Reply+"\n\n"))
				assert.True(t, strings.HasSuffix(out.Reply, EscalationSentence))
			} else {
				assert.Equal(t, tc.reply, out.Reply)
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	in := ai.Response{Reply: "Some answer that is long enough.", Confidence: 0.75}
	assert.Equal(t, Decide(faqMatch(0.7), in), Decide(faqMatch(0.7), in))
}

func TestShouldEscalate(t *testing.T) {
	good := "Happy to walk you through the settings page."
	tests := []struct {
		name string
		faq  *faq.MatchResult
		ai   ai.Response
		want bool
	}{
		{"low ai confidence", faqMatch(0.9), ai.Response{Reply: good, Confidence: 0.59}, true},
		{"missing faq", nil, ai.Response{Reply: good, Confidence: 0.9}, true},
		{"weak faq", faqMatch(0.49), ai.Response{Reply: good, Confidence: 0.9}, true},
		{"faq exactly half", faqMatch(0.5), ai.Response{Reply: good, Confidence: 0.9}, false},
		{"uncertain wording", faqMatch(0.9), ai.Response{Reply: "Sorry, I'm Unable To check that.", Confidence: 0.9}, true},
		{"each phrase", faqMatch(0.9), ai.Response{Reply: "I don't have information on that", Confidence: 0.9}, true},
		{"confident everything", faqMatch(0.9), ai.Response{Reply: good, Confidence: 0.6}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldEscalate(tc.faq, tc.ai))
		})
	}
}

func TestFailure(t *testing.T) {
	out := Failure()
	assert.Equal(t, SourceError, out.Source)
	assert.True(t, out.EscalationOffered)
	assert.Equal(t, 0.0, out.Confidence)
	assert.Equal(t, FailureReply, out.Reply)
}
