package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultURL            = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro:generateContent"
	placeholderAPIKey     = "your_gemini_api_key_here"
	emptyCandidateReply   = "I apologize, but I couldn't generate a response."
	maxLoggedErrorBodyLen = 512
	defaultTemperature    = 0.9
)

var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Client implements the Responder interface against the Gemini generateContent API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	url        string
	generation generationConfig
}

// NewClient constructs a Client if the supplied configuration carries a usable key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" || key == placeholderAPIKey {
		return nil, ErrDisabled
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil && *cfg.Temperature >= 0 {
		temperature = *cfg.Temperature
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 40
	}
	if cfg.TopP <= 0 {
		cfg.TopP = 0.95
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 1024
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     key,
		url:        cfg.URL,
		generation: generationConfig{
			Temperature:     temperature,
			TopK:            cfg.TopK,
			TopP:            cfg.TopP,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Respond sends a single generateContent request. There is no retry; timeouts are
// governed by the HTTP client.
func (c *Client) Respond(ctx context.Context, req Request) (Response, error) {
	if c == nil || !c.Enabled() {
		return Response{}, ErrDisabled
	}

	body, err := json.Marshal(c.buildPayload(req))
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: gemini request: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedErrorBodyLen))
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   strings.TrimSpace(string(raw)),
		}).Warn("gemini returned error status")
		return Response{}, fmt.Errorf("%w: gemini status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %v", ErrBackendUnavailable, err)
	}
	if len(decoded.Candidates) == 0 {
		return Response{}, fmt.Errorf("%w: gemini returned no candidates", ErrBackendUnavailable)
	}

	first := decoded.Candidates[0]
	reply := strings.TrimSpace(first.text())
	if reply == "" {
		reply = emptyCandidateReply
	}
	return Response{
		Reply:      reply,
		Confidence: estimateConfidence(first),
	}, nil
}

func (c *Client) buildPayload(req Request) generateRequest {
	return generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(req)}},
		}},
		GenerationConfig: c.generation,
		SafetySettings:   defaultSafetySettings,
	}
}

// Wire format of the generateContent endpoint. Field names are fixed by the API.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content       content        `json:"content"`
	SafetyRatings []safetyRating `json:"safetyRatings,omitempty"`
}

type safetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

// text returns the first part's text, or "" when the candidate has none.
func (c candidate) text() string {
	if len(c.Content.Parts) == 0 {
		return ""
	}
	return c.Content.Parts[0].Text
}
