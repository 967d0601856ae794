package mock

import (
	"context"

	"github.com/speaklab/retell-be/internal/llm"
)

// Generator satisfies llm.Generator for testing.
type Generator struct {
	Name_        string
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	// Prompts records every prompt passed in, for assertions.
	Prompts []string
}

func (m *Generator) Name() string {
	if m.Name_ == "" {
		return "mock"
	}
	return m.Name_
}

func (m *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "{}", nil
}

// NewGenerator returns a Generator that always answers with the given text.
func NewGenerator(response string) *Generator {
	return &Generator{
		GenerateFunc: func(context.Context, string) (string, error) {
			return response, nil
		},
	}
}

// NewFailingGenerator returns a Generator that always returns the given error.
func NewFailingGenerator(err error) *Generator {
	return &Generator{
		Name_: "mock-failing",
		GenerateFunc: func(context.Context, string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutGenerator returns a Generator that blocks until the context is done.
func NewTimeoutGenerator() *Generator {
	return &Generator{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Compile-time check that Generator implements llm.Generator.
var _ llm.Generator = (*Generator)(nil)
