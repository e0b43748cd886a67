package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEndpoint is the OpenAI chat-completions URL.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// HTTPConfig configures HTTPClient.
type HTTPConfig struct {
	Endpoint      string
	Model         string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// HTTPClient asks an OpenAI-compatible chat-completions endpoint for an
// intent. Calls are rate limited with a token bucket; a call that cannot
// get a token before ctx ends fails with ctx's error.
type HTTPClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	decoder  *Decoder
	logger   *slog.Logger
}

// NewHTTPClient creates a client. Zero-valued fields get defaults:
// DefaultEndpoint, 20s timeout, 2 requests/second with a burst of 4.
func NewHTTPClient(cfg HTTPConfig, logger *slog.Logger) (*HTTPClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("classifier: model is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	dec, err := NewDecoder()
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		decoder:  dec,
		logger:   logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify implements Classifier. Transport and HTTP status failures are
// returned as plain errors; a reply in the wrong shape is a
// *ClassificationError.
func (c *HTTPClient) Classify(ctx context.Context, req Request) (Intent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Intent{}, fmt.Errorf("classifier: rate limit: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: req.Text},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Intent{}, fmt.Errorf("classifier: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Intent{}, fmt.Errorf("classifier: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Intent{}, fmt.Errorf("classifier: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Intent{}, fmt.Errorf("classifier: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return Intent{}, &ClassificationError{Reason: "decode chat response", Err: err}
	}
	if len(chat.Choices) == 0 {
		return Intent{}, &ClassificationError{Reason: "empty choices in response"}
	}

	c.logger.Debug("classifier reply",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"event", "classify",
	)
	return c.decoder.Decode([]byte(chat.Choices[0].Message.Content))
}

func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(`You turn a shopkeeper's message into one bookkeeping action.
Reply with a single JSON object and nothing else:
{"is_action": bool, "kind": "add_sale"|"add_expense"|"update_inventory"|"add_inventory"|null,
 "confidence": number between 0 and 1, "reason": string, "payload": object|null}

Payload shapes:
- add_sale: {"items": [{"name": string, "quantity": number, "price": number}], "payment_method": string|null, "customer": string|null}
- add_expense: {"amount": number, "description": string, "category": string}
- update_inventory: {"item": string, "delta_qty": number|null, "price": number|null} (negative delta_qty means stock used up)
- add_inventory: {"item": string, "quantity": number|null, "cost_price": number|null, "price": number|null, "category": string|null}

Questions, greetings and anything that is not a ledger change get {"is_action": false, "reason": "..."}.
`)
	if req.Locale != "" {
		fmt.Fprintf(&b, "The message may be written in locale %q.\n", req.Locale)
	}
	if len(req.ItemNames) > 0 {
		b.WriteString("Known catalog items (use these names when the message refers to them): ")
		b.WriteString(strings.Join(req.ItemNames, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
