package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "chat.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAppendExchangeAndRecentMessages(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		err := db.AppendExchange(ctx, "conv_1",
			Message{Content: fmt.Sprintf("question %d", i)},
			Message{Content: fmt.Sprintf("answer %d", i), Source: "ai", Confidence: 0.8},
		)
		require.NoError(t, err)
	}
	require.NoError(t, db.AppendExchange(ctx, "conv_2", Message{Content: "other"}, Message{Content: "reply", Source: "faq"}))

	conv, err := db.GetConversation(ctx, "conv_1")
	require.NoError(t, err)
	assert.Equal(t, 8, conv.MessageCount)

	recent, err := db.RecentMessages(ctx, "conv_1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "answer 2", recent[0].Content)
	assert.Equal(t, RoleAssistant, recent[0].Role)
	assert.Equal(t, "question 3", recent[1].Content)
	assert.Equal(t, RoleUser, recent[1].Role)
	assert.Equal(t, "answer 4", recent[4].Content)
}

func TestRecentMessagesUnknownConversation(t *testing.T) {
	db := openTestDB(t)
	recent, err := db.RecentMessages(context.Background(), "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = db.GetConversation(context.Background(), "missing")
	assert.Error(t, err)
}

func TestAppendExchangeRequiresConversation(t *testing.T) {
	db := openTestDB(t)
	err := db.AppendExchange(context.Background(), "  ", Message{Content: "a"}, Message{Content: "b"})
	assert.Error(t, err)
}

func TestEscalationStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.AppendExchange(ctx, "c1", Message{Content: "q"}, Message{Content: "a", Source: "faq"}))
	require.NoError(t, db.AppendExchange(ctx, "c1", Message{Content: "q"}, Message{Content: "a", Source: "ai_with_escalation", EscalationOffered: true}))
	require.NoError(t, db.AppendExchange(ctx, "c2", Message{Content: "q"}, Message{Content: "a", Source: "ai_with_escalation", EscalationOffered: true}))

	stats, err := db.EscalationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"faq": 1, "ai_with_escalation": 2}, stats)
}
