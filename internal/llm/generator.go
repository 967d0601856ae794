// Package llm wraps the external large-language-model provider behind a
// text-in/text-out interface. Timeouts are imposed by callers via context.
package llm

import (
	"context"
	"errors"
)

// Generator produces a textual completion for a prompt.
// Never call a concrete provider directly; inject this interface.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

var (
	// ErrEmptyResponse is returned when the provider answers without any
	// usable candidate text.
	ErrEmptyResponse = errors.New("llm provider returned empty response")
)
