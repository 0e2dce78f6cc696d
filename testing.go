package ideas

import (
	"context"
	"log/slog"
)

// staticInvoker is a mock invoker that always returns the same model output.
type staticInvoker struct {
	text string
}

func (s staticInvoker) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, nil
}

// NewForTesting creates an Analyzer whose model always answers modelOutput,
// so no API key or network access to the model provider is needed.
func NewForTesting(fetcher Fetcher, modelOutput string) *Analyzer {
	p, err := NewStickPromptProvider()
	if err != nil {
		panic(err)
	}
	return &Analyzer{
		fetcher: fetcher,
		prompts: p,
		invoker: staticInvoker{text: modelOutput},
		log:     slog.Default(),
	}
}
