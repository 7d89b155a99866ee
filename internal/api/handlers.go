package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/chat"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Sathi Backend is running!")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
		"service":   "Sathi AI Support",
	})
}

func (s *Server) handleTest(c *gin.Context) {
	resp := gin.H{
		"message":   "Sathi Backend is working!",
		"method":    c.Request.Method,
		"timestamp": time.Now().UTC(),
	}
	if c.Request.Method == http.MethodPost {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			if c.IsAborted() {
				return
			}
			s.renderError(c, http.StatusBadRequest, "Invalid JSON body", err.Error())
			return
		}
		resp["received"] = body
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The size limiter has already answered 413.
		if c.IsAborted() {
			return
		}
		s.renderError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	if details := validateChatRequest(&req); len(details) > 0 {
		s.renderError(c, http.StatusBadRequest, "Invalid input", details...)
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = newConversationID()
	}

	result, err := s.chat.Process(c.Request.Context(), req.toInput(conversationID))
	if err != nil {
		if errors.Is(err, chat.ErrInvalidInput) {
			s.renderError(c, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
		logrus.WithError(err).WithField("conversation", conversationID).Error("chat endpoint failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:    "Internal server error. Please try again later.",
			Response: arbiter.FailureReply,
		})
		return
	}

	c.JSON(http.StatusOK, newChatResponse(result, conversationID))
}

func (s *Server) handleChatConfig(c *gin.Context) {
	demo := s.chat.DemoMode()
	c.JSON(http.StatusOK, ChatConfigResponse{
		MaxMessageLength:  maxMessageLength,
		SupportedFeatures: supportedFeatures,
		QuickActions:      quickActions,
		Features: FeatureFlags{
			AIPowered:           !demo,
			EscalationAvailable: true,
			FAQEnabled:          true,
			DemoMode:            demo,
		},
	})
}

func (s *Server) handleFAQ(c *gin.Context) {
	entries := s.chat.Table().Entries()
	items := make([]FAQEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, FAQEntryDTO{
			Question:       entry.Question,
			Keywords:       entry.Keywords,
			BaseConfidence: entry.BaseConfidence,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func (s *Server) handleStats(c *gin.Context) {
	resp := StatsResponse{ActiveStreams: s.streams.Count()}
	if s.stats == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	sources, err := s.stats.EscalationStats(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Warn("load escalation stats")
		s.renderError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp.StoreEnabled = true
	resp.Sources = sources
	for source, count := range sources {
		resp.Total += count
		if source == string(arbiter.SourceAIWithEscalation) {
			resp.Escalations += count
		}
	}
	c.JSON(http.StatusOK, resp)
}

// validateChatRequest trims the message in place and reports field problems.
func validateChatRequest(req *ChatRequest) []string {
	var details []string
	req.Message = strings.TrimSpace(req.Message)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	switch n := utf8.RuneCountInString(req.Message); {
	case n == 0:
		details = append(details, "Message is required and must be a non-empty string")
	case n > maxMessageLength:
		details = append(details, "Message must be between 1 and 500 characters")
	}
	if utf8.RuneCountInString(req.ConversationID) > maxConversationIDLength {
		details = append(details, "Conversation ID must be at most 100 characters")
	}
	return details
}

func newConversationID() string {
	return "conv_" + uuid.NewString()
}
