package store

import "time"

// Conversation is a chat session identified by the opaque id handed to the widget.
type Conversation struct {
	ID           string `gorm:"primaryKey;size:100"`
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

// Message is one turn of a conversation. Assistant turns carry the routing metadata.
type Message struct {
	ID                uint   `gorm:"primaryKey"`
	ConversationID    string `gorm:"size:100;index"`
	Role              string `gorm:"size:16"`
	Content           string `gorm:"type:text"`
	Source            string `gorm:"size:32;index"`
	Confidence        float64
	EscalationOffered bool `gorm:"index"`
	CreatedAt         time.Time
}

// Roles used for stored turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
