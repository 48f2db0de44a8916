// Package dispatch obtains a display string for one LLM call, either by
// synthesizing a canned response or by calling the MentorPiece endpoint.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pricofy/translation-judge/internal/domain"
	"github.com/pricofy/translation-judge/internal/metrics"
	"github.com/pricofy/translation-judge/internal/prompt"
)

// DefaultEndpoint is the MentorPiece LLM endpoint.
const DefaultEndpoint = "https://api.mentorpiece.org/v1/process-ai-request"

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a non-2xx body ends up in the error message.
const maxErrorBody = 512

// Canned mock responses.
const (
	MockTranslation = "Mocked Translation: The sun is shining."
	MockGrade       = "Mocked Grade: 9/10. Fluent and accurate."
)

// Call is a single request to an LLM.
type Call struct {
	Action   domain.Action
	Model    string
	Messages []string
	Mode     domain.Mode
	// APIKey is only consulted in auth mode.
	APIKey string
}

// Dispatcher turns calls into responses. It is safe for concurrent use.
type Dispatcher struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
	metrics  *metrics.Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the HTTP client. The client's timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher for endpoint. Zero values select the defaults.
func New(endpoint string, timeout time.Duration, opts ...Option) *Dispatcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns the response text, or the error message when the call failed.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) string {
	text, err := d.Do(ctx, call)
	if err != nil {
		return Message(err)
	}
	return text
}

// Do performs the call. Errors are one of ErrMissingCredential, *NetworkError,
// *StatusError or ErrInvalidPayload.
func (d *Dispatcher) Do(ctx context.Context, call Call) (string, error) {
	start := time.Now()

	var text string
	var err error
	switch call.Mode {
	case domain.ModeMock:
		text = Mock(call.Action, call.Model)
	case domain.ModeNoAuth:
		text, err = d.post(ctx, call.Model, call.Messages, "")
	case domain.ModeAuth:
		if call.APIKey == "" {
			err = ErrMissingCredential
			break
		}
		text, err = d.post(ctx, call.Model, call.Messages, call.APIKey)
	default:
		err = fmt.Errorf("unsupported mode %s", call.Mode)
	}

	elapsed := time.Since(start)
	result := outcome(err)
	d.metrics.Observe(string(call.Action), call.Mode.String(), result, elapsed)

	logger := d.logger.With(
		"action", call.Action,
		"model", call.Model,
		"mode", call.Mode,
		"tokens", prompt.EstimateTotal(call.Messages),
		"elapsed", elapsed,
	)
	if err != nil {
		logger.Warn("llm call failed", "outcome", result, "err", err)
		return "", err
	}
	logger.Debug("llm call finished")
	return text, nil
}

// Mock returns the canned response for action. A call without an action falls
// back to the model family.
func Mock(action domain.Action, model string) string {
	switch action {
	case domain.ActionTranslate:
		return MockTranslation
	case domain.ActionJudge:
		return MockGrade
	}
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "qwen"):
		return MockTranslation
	case strings.HasPrefix(lower, "claude"):
		return MockGrade
	}
	return "Mocked response for model: " + model
}

// post sends a single request to the endpoint. An empty apiKey omits the
// Authorization header.
func (d *Dispatcher) post(ctx context.Context, model string, messages []string, apiKey string) (string, error) {
	body, err := json.Marshal(domain.LLMRequest{
		ModelName: model,
		Prompt:    prompt.Join(messages),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	var payload domain.LLMResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", ErrInvalidPayload
	}
	return payload.Response, nil
}
