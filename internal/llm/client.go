// Package llm requests clinical summaries from an OpenAI-compatible
// chat-completion endpoint, retrying transient failures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultURL   = "https://router.huggingface.co/hf-inference/v1/chat/completions"
	DefaultModel = "google/flan-t5-large"

	SystemPrompt = "You are a clinical assistant. Summarize data into: 1. Diagnosis, 2. Vitals, 3. Wounds, 4. Meds, 5. Status."
	userPrefix   = "Summarize this patient data:\n"

	// OverwhelmedMessage is returned when every attempt hit a transient failure.
	OverwhelmedMessage = "The Hugging Face Router is currently overwhelmed. Please try again in 2 minutes."
)

// Config holds everything the client needs; nothing is read from globals.
type Config struct {
	URL           string
	Token         string
	Model         string
	MaxTokens     int
	Attempts      int
	Timeout       time.Duration // per attempt
	TransientWait time.Duration // after 503 / 429
	TransportWait time.Duration // after a transport fault
}

// DefaultConfig returns the production defaults without a credential.
func DefaultConfig() Config {
	return Config{
		URL:           DefaultURL,
		Model:         DefaultModel,
		MaxTokens:     500,
		Attempts:      3,
		Timeout:       60 * time.Second,
		TransientWait: 20 * time.Second,
		TransportWait: 10 * time.Second,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client talks to the chat-completion endpoint.
type Client struct {
	cfg   Config
	http  *http.Client
	log   zerolog.Logger
	sleep Sleeper
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleeper replaces the backoff sleeper, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// NewClient returns a Client. Zero-valued config fields take their defaults.
func NewClient(cfg Config, log zerolog.Logger, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.TransientWait <= 0 {
		cfg.TransientWait = def.TransientWait
	}
	if cfg.TransportWait <= 0 {
		cfg.TransportWait = def.TransportWait
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{},
		log:   log,
		sleep: sleepCtx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

// errorMessage extracts error.message, accepting both {"error":{"message":..}}
// and {"error":"..."} payloads.
func (r *chatResponse) errorMessage() string {
	if len(r.Error) == 0 {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Error, &obj); err == nil {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return ""
}

// outcome of a single attempt.
type outcome struct {
	text  string        // final text when done
	done  bool          // stop retrying and return text
	wait  time.Duration // backoff before the next attempt
	cause string        // why the attempt is retried, for logs
}

// Summarize asks the model to summarize contextText. It always yields
// displayable text: the summary, an "API Error" line for a permanent
// rejection, or OverwhelmedMessage once attempts run out. The error is
// non-nil only when ctx ends first.
func (c *Client) Summarize(ctx context.Context, contextText string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userPrefix + contextText},
		},
		MaxTokens: c.cfg.MaxTokens,
		Stream:    false,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		start := time.Now()
		out := c.attempt(ctx, body)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if out.done {
			c.log.Info().
				Int("attempt", attempt).
				Dur("duration", time.Since(start)).
				Msg("generation finished")
			return out.text, nil
		}

		c.log.Warn().
			Int("attempt", attempt).
			Int("max_attempts", c.cfg.Attempts).
			Str("cause", out.cause).
			Dur("backoff", out.wait).
			Msg("generation attempt failed")

		if attempt == c.cfg.Attempts {
			break
		}
		if err := c.sleep(ctx, out.wait); err != nil {
			return "", err
		}
	}

	c.log.Error().Int("attempts", c.cfg.Attempts).Msg("generation retries exhausted")
	return OverwhelmedMessage, nil
}

func (c *Client) attempt(ctx context.Context, body []byte) outcome {
	transport := func(cause string) outcome {
		return outcome{wait: c.cfg.TransportWait, cause: cause}
	}

	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return transport(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transport(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport(fmt.Sprintf("read body: %v", err))
	}

	switch resp.StatusCode {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return outcome{wait: c.cfg.TransientWait, cause: fmt.Sprintf("status %d", resp.StatusCode)}

	case http.StatusOK:
		var cr chatResponse
		if err := json.Unmarshal(raw, &cr); err != nil {
			return transport(fmt.Sprintf("decode response: %v", err))
		}
		if len(cr.Choices) == 0 {
			return transport("response has no choices")
		}
		return outcome{text: strings.TrimSpace(cr.Choices[0].Message.Content), done: true}
	}

	var cr chatResponse
	msg := ""
	if err := json.Unmarshal(raw, &cr); err == nil {
		msg = cr.errorMessage()
	}
	if msg == "" {
		msg = "Unknown error"
	}
	c.log.Error().Int("status", resp.StatusCode).Str("message", msg).Msg("generation rejected")
	return outcome{text: fmt.Sprintf("API Error %d: %s", resp.StatusCode, msg), done: true}
}

// IsCanceled reports whether err came from the caller giving up.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
