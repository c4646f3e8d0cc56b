package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *OllamaClient {
	c := NewOllamaClient(serverURL, "llama3")
	c.baseDelay = time.Millisecond
	return c
}

func TestGenerateSuccess(t *testing.T) {
	var gotReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/generate" {
				t.Errorf("path = %q, want /api/generate", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("decoding request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"response": "hello back"})
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Generate(context.Background(), "hello", GenerateOptions{
		SystemPrompt: "be brief",
		Temperature:  0.7,
		MaxTokens:    100,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result != "hello back" {
		t.Errorf("result = %q, want %q", result, "hello back")
	}

	if gotReq["model"] != "llama3" {
		t.Errorf("model = %v, want llama3", gotReq["model"])
	}
	if gotReq["stream"] != false {
		t.Errorf("stream = %v, want false", gotReq["stream"])
	}
	prompt, _ := gotReq["prompt"].(string)
	if prompt != "be brief\n\nhello" {
		t.Errorf("prompt = %q, want the system prompt folded in", prompt)
	}
	options, _ := gotReq["options"].(map[string]interface{})
	if options["num_predict"] != float64(100) {
		t.Errorf("num_predict = %v, want 100", options["num_predict"])
	}
}

func TestGenerateNDJSONStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Write([]byte(`{"response":"hel"}` + "\n" +
				`{"response":"lo"}` + "\n" +
				`{"done":true}` + "\n"))
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Generate(context.Background(), "hi", GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result != "hello" {
		t.Errorf("result = %q, want concatenated chunks %q", result, "hello")
	}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				http.Error(w, "overloaded", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Generate(context.Background(), "hi", GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate failed after retries: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, "down", http.StatusInternalServerError)
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Generate(context.Background(), "hi", GenerateOptions{})
	if err == nil {
		t.Fatal("Generate should fail when the server keeps erroring")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %T, want *GenerationError", err)
	}
	if genErr.Attempts != defaultMaxRetries {
		t.Errorf("Attempts = %d, want %d", genErr.Attempts, defaultMaxRetries)
	}
	if !IsGenerationError(err) {
		t.Error("IsGenerationError should report true")
	}
	if attempts != defaultMaxRetries {
		t.Errorf("server saw %d attempts, want %d", attempts, defaultMaxRetries)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, "model not found", http.StatusBadRequest)
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Generate(context.Background(), "hi", GenerateOptions{})
	if err == nil {
		t.Fatal("Generate should fail on a client error")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %T, want *GenerationError", err)
	}
	if genErr.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", genErr.Attempts)
	}
	if attempts != 1 {
		t.Errorf("server saw %d attempts, want 1 for a definitive failure", attempts)
	}
}

func TestGenerateRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
	defer server.Close()

	c := newTestClient(server.URL)
	c.baseDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "hi", GenerateOptions{})
	if err == nil {
		t.Fatal("Generate should fail with a canceled context")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %T, want *GenerationError", err)
	}
	if !errors.Is(genErr.Err, context.Canceled) {
		t.Errorf("wrapped error = %v, want context.Canceled", genErr.Err)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/tags" {
				t.Errorf("path = %q, want /api/tags", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"models":[{"name":"llama3"},{"name":"mistral"}]}`))
		}))
	defer server.Close()

	c := newTestClient(server.URL)

	names, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3" || names[1] != "mistral" {
		t.Errorf("names = %v, want [llama3 mistral]", names)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"models":[]}`))
		}))
	defer server.Close()

	if err := newTestClient(server.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	down := newTestClient("http://127.0.0.1:1")
	if err := down.Ping(context.Background()); err == nil {
		t.Error("Ping should fail against an unreachable server")
	}
}
