package scripted

import (
	"context"
	"fmt"
	"sync"

	"ai-canvas-be/pkg/llm"
)

// Provider plays back a fixed script of responses in order. It backs
// the simulation CLI and pipeline tests, where deterministic model
// output is needed to drive the orchestrator end to end.
type Provider struct {
	mu        sync.Mutex
	responses []string
	calls     int

	// Err, when set, is returned on every call instead of a response.
	Err error
}

var _ llm.Provider = &Provider{}

func NewProvider(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Push appends more responses to the script.
func (p *Provider) Push(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, responses...)
}

// Calls reports how many invocations have been consumed.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.next()
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.next()
}

func (p *Provider) next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	if p.calls >= len(p.responses) {
		return "", fmt.Errorf("scripted provider exhausted after %d responses", len(p.responses))
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}
