package ai

import (
	"context"
	"errors"
	"fmt"
)

// GenerateOptions tunes a single generation request.
type GenerateOptions struct {
	// SystemPrompt is prepended to the prompt when non-empty.
	SystemPrompt string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the output length; 0 means no explicit cap.
	MaxTokens int
}

// Generator is the text generation service consumed by the pipeline.
// Implementations must retry transient failures themselves and return
// a GenerationError after retries are exhausted rather than hanging.
type Generator interface {
	// Generate produces a completion for the prompt. Blocking.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ListModels returns the names of the models the service offers.
	ListModels(ctx context.Context) ([]string, error)

	// Ping reports whether the service is reachable.
	Ping(ctx context.Context) error
}

// GenerationError indicates the generation service failed definitively
// after exhausting its retries.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf(
		"generation failed after %d attempts: %v", e.Attempts, e.Err,
	)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err (or any error in its chain)
// is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
