package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Responder produces an assistant reply for a user message.
type Responder interface {
	Enabled() bool
	Respond(ctx context.Context, req Request) (Response, error)
}

// Config holds Gemini configuration parameters. The API key is passed explicitly;
// nothing is read from the environment here. A nil Temperature selects the default,
// so an explicit 0 is honoured.
type Config struct {
	APIKey          string
	URL             string
	Temperature     *float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Turn is a single prior message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the current user message and the conversation so far.
type Request struct {
	Message string
	History []Turn
}

// Response is the reply text and a heuristic confidence in [0,1].
type Response struct {
	Reply      string  `json:"reply"`
	Confidence float64 `json:"confidence"`
}

var (
	// ErrDisabled is returned when no usable API key is configured.
	ErrDisabled = errors.New("ai responder disabled")
	// ErrBackendUnavailable marks failures talking to the generative backend:
	// transport errors, non-2xx answers, undecodable bodies and empty candidate lists.
	ErrBackendUnavailable = errors.New("ai backend unavailable")
)
