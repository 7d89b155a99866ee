package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/faq"
	"sathi-support/backend/internal/store"
)

type stubResponder struct {
	resp ai.Response
	err  error

	mu       sync.Mutex
	requests []ai.Request
}

func (s *stubResponder) Enabled() bool { return true }

func (s *stubResponder) Respond(_ context.Context, req ai.Request) (ai.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.resp, s.err
}

type memoryStore struct {
	mu       sync.Mutex
	messages map[string][]store.Message
	fail     bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{messages: make(map[string][]store.Message)}
}

func (m *memoryStore) AppendExchange(_ context.Context, id string, user, assistant store.Message) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Role = store.RoleUser
	assistant.Role = store.RoleAssistant
	m.messages[id] = append(m.messages[id], user, assistant)
	return nil
}

func (m *memoryStore) RecentMessages(_ context.Context, id string, limit int) ([]store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.messages[id]
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return append([]store.Message(nil), rows...), nil
}

func newTestService(t *testing.T, responder ai.Responder, st Store) *Service {
	t.Helper()
	table, err := faq.DefaultTable()
	require.NoError(t, err)
	svc, err := NewService(Config{Table: table, Responder: responder, Store: st})
	require.NoError(t, err)
	return svc
}

func TestProcessServesFAQForExactQuestion(t *testing.T) {
	responder := &stubResponder{resp: ai.Response{Reply: "Generic answer about many possible things.", Confidence: 0.5}}
	svc := newTestService(t, responder, nil)

	result, err := svc.Process(context.Background(), Input{Message: "How do I reset my password?"})
	require.NoError(t, err)
	assert.Equal(t, arbiter.SourceFAQ, result.Source)
	assert.False(t, result.EscalationOffered)
	assert.True(t, strings.HasPrefix(result.Reply, "To reset your password"))
	assert.Equal(t, 1.0, result.Confidence)
	assert.Len(t, responder.requests, 1)
}

func TestProcessEscalatesWhenNothingMatches(t *testing.T) {
	responder := &stubResponder{resp: ai.Response{Reply: "I'm not sure about that", Confidence: 0.9}}
	svc := newTestService(t, responder, nil)

	result, err := svc.Process(context.Background(), Input{Message: "zzz qqq"})
	require.NoError(t, err)
	assert.Equal(t, arbiter.SourceAIWithEscalation, result.Source)
	assert.True(t, result.EscalationOffered)
	assert.True(t, strings.HasSuffix(result.Reply, arbiter.EscalationSentence))
	assert.False(t, result.FAQ.Found())
}

func TestProcessBackendFailureDegrades(t *testing.T) {
	responder := &stubResponder{err: errors.New("wrapped: " + ai.ErrBackendUnavailable.Error())}
	svc := newTestService(t, responder, nil)

	result, err := svc.Process(context.Background(), Input{Message: "How do I reset my password?"})
	require.NoError(t, err)
	assert.Equal(t, arbiter.Failure(), result.Outcome)
}

func TestProcessRejectsEmptyMessage(t *testing.T) {
	svc := newTestService(t, &stubResponder{}, nil)
	_, err := svc.Process(context.Background(), Input{Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcessDemoMode(t *testing.T) {
	svc := newTestService(t, ai.NewResponder(ai.Config{}), nil)
	assert.True(t, svc.DemoMode())

	result, err := svc.Process(context.Background(), Input{Message: "Tell me about the weather"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Equal(t, arbiter.SourceAIWithEscalation, result.Source)
	assert.Contains(t, result.Reply, "demo mode")
}

func TestProcessRecordsAndReplaysHistory(t *testing.T) {
	responder := &stubResponder{resp: ai.Response{Reply: "Happy to help with your account settings today.", Confidence: 0.8}}
	st := newMemoryStore()
	svc := newTestService(t, responder, st)
	ctx := context.Background()

	for _, msg := range []string{"first question", "second question", "third question"} {
		_, err := svc.Process(ctx, Input{Message: msg, ConversationID: "conv_abc"})
		require.NoError(t, err)
	}

	require.Len(t, st.messages["conv_abc"], 6)
	assert.Equal(t, "first question", st.messages["conv_abc"][0].Content)
	assert.Equal(t, "ai_with_escalation", st.messages["conv_abc"][1].Source)

	last := responder.requests[2]
	require.Len(t, last.History, 4)
	assert.Equal(t, ai.Turn{Role: store.RoleUser, Content: "first question"}, last.History[0])

	explicit := []ai.Turn{{Role: "user", Content: "from the widget"}}
	_, err := svc.Process(ctx, Input{Message: "fourth", ConversationID: "conv_abc", History: explicit})
	require.NoError(t, err)
	assert.Equal(t, explicit, responder.requests[3].History)
}

func TestProcessStoreFailureIsNotFatal(t *testing.T) {
	st := newMemoryStore()
	st.fail = true
	svc := newTestService(t, &stubResponder{resp: ai.Response{Reply: "A perfectly fine reply to you.", Confidence: 0.8}}, st)

	result, err := svc.Process(context.Background(), Input{Message: "password", ConversationID: "conv_x"})
	require.NoError(t, err)
	assert.NotEqual(t, arbiter.SourceError, result.Source)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{Responder: &stubResponder{}})
	assert.Error(t, err)
	table, err := faq.DefaultTable()
	require.NoError(t, err)
	_, err = NewService(Config{Table: table})
	assert.Error(t, err)
}
