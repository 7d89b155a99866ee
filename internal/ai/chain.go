package ai

import (
	"context"
	"fmt"
)

// demoConfidence is the fixed confidence reported for demo replies.
const demoConfidence = 0.5

// Demo answers without any network access. It is used when no API key is configured.
type Demo struct{}

// Enabled always reports true; demo replies need no credentials.
func (Demo) Enabled() bool { return true }

// Respond echoes the user's message with a note that the service runs in demo mode.
func (Demo) Respond(_ context.Context, req Request) (Response, error) {
	reply := fmt.Sprintf("I understand you're asking: \"%s\". I'm currently in demo mode. To get AI-powered responses, please configure your Gemini API key. For now, I can help with our FAQ questions!", req.Message)
	return Response{Reply: reply, Confidence: demoConfidence}, nil
}

type responderChain struct {
	primary  Responder
	fallback Responder
}

// WithFallback returns a responder that uses the primary implementation when it is
// enabled and the fallback otherwise. Errors from an enabled primary are returned
// as-is; the fallback never masks a backend failure.
func WithFallback(primary, fallback Responder) Responder {
	if isNil(primary) {
		return fallback
	}
	if isNil(fallback) {
		return primary
	}
	return &responderChain{primary: primary, fallback: fallback}
}

func (c *responderChain) Enabled() bool {
	if c == nil {
		return false
	}
	return c.primary.Enabled() || c.fallback.Enabled()
}

func (c *responderChain) Respond(ctx context.Context, req Request) (Response, error) {
	if c == nil {
		return Response{}, ErrDisabled
	}
	if c.primary.Enabled() {
		return c.primary.Respond(ctx, req)
	}
	if c.fallback.Enabled() {
		return c.fallback.Respond(ctx, req)
	}
	return Response{}, ErrDisabled
}

// NewResponder builds the Gemini client from cfg and falls back to demo mode when
// no key is configured. No network call is ever attempted in demo mode.
func NewResponder(cfg Config) Responder {
	client, err := NewClient(cfg)
	if err != nil {
		return Demo{}
	}
	return WithFallback(client, Demo{})
}

// DemoMode reports whether r answers from the demo responder.
func DemoMode(r Responder) bool {
	switch v := r.(type) {
	case Demo, *Demo:
		return true
	case *responderChain:
		return !v.primary.Enabled()
	default:
		return false
	}
}

func isNil(r Responder) bool {
	if r == nil {
		return true
	}
	if c, ok := r.(*Client); ok && c == nil {
		return true
	}
	return false
}
