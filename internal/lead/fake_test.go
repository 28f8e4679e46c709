package lead

import (
	"context"
	"sync"

	"github.com/ashureev/leadrelay/internal/llm"
)

// fakeGenerator returns canned output and records the prompts it was given.
type fakeGenerator struct {
	mu      sync.Mutex
	out     string
	err     error
	prompts []llm.Prompt
}

func (f *fakeGenerator) Generate(_ context.Context, p llm.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeGenerator) lastPrompt() llm.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}
