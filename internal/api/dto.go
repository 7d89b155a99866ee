package api

import (
	"time"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/chat"
)

const (
	maxMessageLength        = 500
	maxConversationIDLength = 100
)

// HistoryTurn is a prior message supplied by the client.
type HistoryTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the body accepted by POST /api/chat and by websocket frames.
type ChatRequest struct {
	Message        string        `json:"message"`
	ConversationID string        `json:"conversationId" binding:"omitempty,max=100"`
	History        []HistoryTurn `json:"history" binding:"omitempty,dive"`
}

// ChatResponse is the reply returned to the client.
type ChatResponse struct {
	Response          string         `json:"response"`
	ConversationID    string         `json:"conversationId"`
	Confidence        float64        `json:"confidence"`
	Source            arbiter.Source `json:"source"`
	EscalationOffered bool           `json:"escalationOffered"`
	Timestamp         time.Time      `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  []string `json:"details,omitempty"`
	Response string   `json:"response,omitempty"`
}

// QuickAction is a canned prompt the widget offers as a button.
type QuickAction struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// ChatConfigResponse describes widget capabilities.
type ChatConfigResponse struct {
	MaxMessageLength  int           `json:"maxMessageLength"`
	SupportedFeatures []string      `json:"supportedFeatures"`
	QuickActions      []QuickAction `json:"quickActions"`
	Features          FeatureFlags  `json:"features"`
}

// FeatureFlags reports which answer sources are live.
type FeatureFlags struct {
	AIPowered           bool `json:"aiPowered"`
	EscalationAvailable bool `json:"escalationAvailable"`
	FAQEnabled          bool `json:"faqEnabled"`
	DemoMode            bool `json:"demoMode"`
}

// FAQEntryDTO is the public view of an FAQ entry. Answers are omitted.
type FAQEntryDTO struct {
	Question       string   `json:"question"`
	Keywords       []string `json:"keywords"`
	BaseConfidence float64  `json:"baseConfidence"`
}

// StatsResponse summarizes answer sources across stored conversations.
type StatsResponse struct {
	StoreEnabled  bool             `json:"storeEnabled"`
	Sources       map[string]int64 `json:"sources,omitempty"`
	Total         int64            `json:"total"`
	Escalations   int64            `json:"escalations"`
	ActiveStreams int              `json:"activeStreams"`
}

var quickActions = []QuickAction{
	{Label: "Account Help", Message: "I need help with my account"},
	{Label: "Technical Issue", Message: "I'm experiencing a technical problem"},
	{Label: "Privacy Questions", Message: "I have questions about privacy and data"},
	{Label: "Find Consultants", Message: "How do I find and connect with consultants?"},
	{Label: "Billing Support", Message: "I need help with billing or payments"},
	{Label: "Chat Features", Message: "How do I use the chat features?"},
}

var supportedFeatures = []string{"text", "faq", "ai", "escalation", "history", "websocket"}

func (r ChatRequest) toInput(conversationID string) chat.Input {
	in := chat.Input{Message: r.Message, ConversationID: conversationID}
	for _, turn := range r.History {
		in.History = append(in.History, ai.Turn{Role: turn.Role, Content: turn.Content})
	}
	return in
}

func newChatResponse(result chat.Result, conversationID string) ChatResponse {
	return ChatResponse{
		Response:          result.Reply,
		ConversationID:    conversationID,
		Confidence:        result.Confidence,
		Source:            result.Source,
		EscalationOffered: result.EscalationOffered,
		Timestamp:         time.Now().UTC(),
	}
}
