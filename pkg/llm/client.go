package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3"
	DefaultTimeout = 600 * time.Second
)

// ErrUnreachable indicates the generation service refused the connection.
var ErrUnreachable = errors.New("cannot connect to the generation service, start it with: ollama serve")

// ErrTimeout indicates the generation call exceeded its deadline.
var ErrTimeout = errors.New("generation service request timed out")

// GenerateRequest describes one text generation call.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

type generatePayload struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Client talks to a locally hosted Ollama-compatible generation service.
type Client struct {
	baseURL string
	http    *http.Client
	health  *http.Client
}

func NewClient(baseURL string, requestTimeout, healthTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultTimeout
	}
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		health:  &http.Client{Timeout: healthTimeout},
	}
}

// CheckConnection verifies the service is reachable. Returns a
// human-readable status message either way.
func (c *Client) CheckConnection(ctx context.Context) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false, fmt.Sprintf("generation service check failed: %v", err)
	}
	resp, err := c.health.Do(req)
	if err != nil {
		if isTimeout(err) {
			return false, "connection to the generation service timed out"
		}
		return false, ErrUnreachable.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("generation service returned status code %d", resp.StatusCode)
	}
	return true, "generation service is running"
}

// CheckModel reports whether the named model is installed.
func (c *Client) CheckModel(ctx context.Context, model string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Sprintf("could not check model availability: %v", err)
	}
	resp, err := c.health.Do(req)
	if err != nil {
		return false, fmt.Sprintf("could not check model availability: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("could not check model availability: status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Sprintf("could not check model availability: %v", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name, _, _ := strings.Cut(m.Name, ":")
		names = append(names, name)
		if name == model {
			return true, fmt.Sprintf("model %q is available", model)
		}
	}
	available := "none"
	if len(names) > 0 {
		available = strings.Join(names, ", ")
	}
	return false, fmt.Sprintf("model %q not found, available models: %s", model, available)
}

// Generate sends a single non-streaming prompt and returns the text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	payload := generatePayload{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation service error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return gr.Response, nil
}

// GenerateTitle asks the model for a short lecture title based on the
// first 2000 characters of the transcript.
func (c *Client) GenerateTitle(ctx context.Context, transcript, model string) (string, error) {
	sample := transcript
	if len(sample) > titleSampleChars {
		sample = sample[:titleSampleChars]
	}

	title, err := c.Generate(ctx, GenerateRequest{
		Model:       model,
		Prompt:      TitlePrompt(sample),
		Temperature: TitleTemperature,
		MaxTokens:   TitleMaxTokens,
	})
	if err != nil {
		return "", err
	}

	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if len(title) > titleMaxChars {
		cut := title[:titleMaxChars]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		title = cut + "..."
	}
	return title, nil
}

const (
	titleSampleChars = 2000
	titleMaxChars    = 100
)

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
