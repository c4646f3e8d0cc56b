package ai

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
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// OllamaClient talks to a local Ollama server over its HTTP API.
// It implements Generator with bounded retry and exponential backoff.
type OllamaClient struct {
	host       string
	model      string
	maxRetries int
	baseDelay  time.Duration
	client     *http.Client
}

// NewOllamaClient creates a client for the Ollama server at host
// (e.g., "http://localhost:11434") using the given model.
func NewOllamaClient(host, model string) *OllamaClient {
	return &OllamaClient{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		client:     &http.Client{},
	}
}

// Generate produces a completion, retrying transient failures with
// exponential backoff. Client errors (4xx) are definitive and fail
// immediately. After the retries are exhausted it returns a
// GenerationError.
func (c *OllamaClient) Generate(
	ctx context.Context,
	prompt string,
	opts GenerateOptions,
) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return "", &GenerationError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		result, err := c.generateOnce(ctx, prompt, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var he *httpError
		if errors.As(err, &he) && he.status >= 400 && he.status < 500 {
			return "", &GenerationError{Attempts: attempt + 1, Err: err}
		}
	}

	return "", &GenerationError{Attempts: c.maxRetries, Err: lastErr}
}

// httpError carries the status of a non-2xx Ollama response so the
// retry loop can tell definitive failures from transient ones.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("Ollama error (%d): %s", e.status, e.body)
}

// generateOnce makes a single request to the Ollama generate endpoint.
func (c *OllamaClient) generateOnce(
	ctx context.Context,
	prompt string,
	opts GenerateOptions,
) (string, error) {
	// Ollama's generate endpoint takes a single prompt; fold the
	// system prompt in ahead of the user prompt.
	fullPrompt := prompt
	if opts.SystemPrompt != "" {
		fullPrompt = opts.SystemPrompt + "\n\n" + prompt
	}

	options := map[string]interface{}{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	reqBody := map[string]interface{}{
		"model":   c.model,
		"prompt":  fullPrompt,
		"stream":  false,
		"options": options,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.host+"/api/generate",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &httpError{status: resp.StatusCode, body: string(respBody)}
	}

	// Some Ollama versions ignore "stream": false and answer with
	// newline-delimited JSON chunks; concatenate those.
	if strings.Contains(
		resp.Header.Get("Content-Type"), "application/x-ndjson",
	) {
		return joinStreamChunks(respBody), nil
	}

	var data struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return data.Response, nil
}

// joinStreamChunks concatenates the "response" fields of an NDJSON
// stream, skipping lines that fail to parse.
func joinStreamChunks(body []byte) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		var chunk struct {
			Response string `json:"response"`
		}
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		sb.WriteString(chunk.Response)
	}
	return sb.String()
}

// ListModels returns the names of the models available on the server.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.host+"/api/tags", nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing Ollama models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama error (%d)", resp.StatusCode)
	}

	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding model list: %w", err)
	}

	names := make([]string, 0, len(data.Models))
	for _, m := range data.Models {
		names = append(names, m.Name)
	}

	return names, nil
}

// Ping reports whether the Ollama server is reachable.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.host+"/api/tags", nil,
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not running: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama not healthy (%d)", resp.StatusCode)
	}

	return nil
}
