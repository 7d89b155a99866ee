package faq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchExactQuestion(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	result := Match("How do I reset my password?", table)
	require.True(t, result.Found())
	assert.Equal(t, "How do I reset my password?", result.Entry.Question)
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.Accepted())
}

func TestMatchScoresStayInRange(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	messages := []string{
		"",
		"hello",
		"I'm having technical problems with the website, error loading page broken bug not working",
		"privacy data security protected conversations encrypted private confidential who can see",
		"a e i o u",
		"what does it cost and is there free pricing or billing?",
	}
	for _, msg := range messages {
		result := Match(msg, table)
		assert.GreaterOrEqual(t, result.Score, 0.0, msg)
		assert.LessOrEqual(t, result.Score, 1.0, msg)
	}
}

func TestMatchMonotonicInKeywords(t *testing.T) {
	table, err := NewTable([]Entry{{
		Question:       "Unrelated canonical question",
		Answer:         "answer",
		Keywords:       []string{"alpha", "beta", "gamma", "delta"},
		BaseConfidence: 0.9,
	}})
	require.NoError(t, err)

	tests := []struct {
		message string
		want    float64
	}{
		{"alpha", 0.3},
		{"alpha beta", 0.6},
		{"alpha beta gamma", 0.9},
		{"alpha beta gamma delta", 1.0},
	}
	prev := 0.0
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			result := Match(tc.message, table)
			assert.InDelta(t, tc.want, result.Score, 1e-9)
			assert.GreaterOrEqual(t, result.Score, prev)
			prev = result.Score
		})
	}
}

func TestMatchNoOverlapScoresZero(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	result := Match("zzz qqq", table)
	assert.False(t, result.Found())
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Accepted())
}

func TestMatchEmptyInputs(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	assert.Equal(t, MatchResult{}, Match("   ", table))

	empty, err := NewTable(nil)
	require.NoError(t, err)
	assert.Equal(t, MatchResult{}, Match("password reset", empty))
	assert.Equal(t, MatchResult{}, Match("password reset", nil))
}

func TestMatchTiesKeepFirstEntry(t *testing.T) {
	table, err := NewTable([]Entry{
		{Question: "first", Answer: "one", Keywords: []string{"billing"}, BaseConfidence: 0.8},
		{Question: "second", Answer: "two", Keywords: []string{"billing"}, BaseConfidence: 0.9},
	})
	require.NoError(t, err)

	result := Match("billing", table)
	require.True(t, result.Found())
	assert.Equal(t, "one", result.Entry.Answer)
}

func TestMatchIsIdempotent(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	first := Match("Is my data secure and private?", table)
	second := Match("Is my data secure and private?", table)
	assert.Equal(t, first, second)

	first.Entry.Answer = "mutated"
	third := table.Match("Is my data secure and private?")
	assert.NotEqual(t, "mutated", third.Entry.Answer)
}

func TestAcceptedThreshold(t *testing.T) {
	entry := &Entry{Question: "q", Answer: "a", Keywords: []string{"k"}, BaseConfidence: 0.9}
	assert.False(t, MatchResult{Entry: entry, Score: 0.8}.Accepted())
	assert.True(t, MatchResult{Entry: entry, Score: 0.81}.Accepted())
	assert.False(t, MatchResult{Score: 0.9}.Accepted())
}

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	require.Equal(t, 11, table.Len())

	entries := table.Entries()
	assert.Equal(t, "How do I create an account?", entries[0].Question)
	assert.Contains(t, entries[0].Keywords, "sign up")
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Keywords)
		assert.Greater(t, entry.BaseConfidence, 0.0)
		assert.LessOrEqual(t, entry.BaseConfidence, 1.0)
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.yaml")
	data := []byte(`
- question: Where is my invoice?
  answer: Invoices live under Settings.
  keywords: [Invoice, BILLING]
  base_confidence: 0.7
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"invoice", "billing"}, table.Entries()[0].Keywords)

	defaults, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, 11, defaults.Len())

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"no keywords", Entry{Question: "q", Answer: "a", BaseConfidence: 0.5}},
		{"blank keywords", Entry{Question: "q", Answer: "a", Keywords: []string{" "}, BaseConfidence: 0.5}},
		{"zero confidence", Entry{Question: "q", Answer: "a", Keywords: []string{"k"}}},
		{"confidence above one", Entry{Question: "q", Answer: "a", Keywords: []string{"k"}, BaseConfidence: 1.5}},
		{"no question", Entry{Answer: "a", Keywords: []string{"k"}, BaseConfidence: 0.5}},
		{"no answer", Entry{Question: "q", Keywords: []string{"k"}, BaseConfidence: 0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable([]Entry{tc.entry})
			assert.Error(t, err)
		})
	}
}
