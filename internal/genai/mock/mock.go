// Package mock provides a deterministic genai.Generator for tests and offline
// runs. By default it echoes the primary image back as the generated image.
package mock

import (
	"context"
	"sync"

	"go-shoe-studio/internal/genai"
)

type Generator struct {
	mu       sync.Mutex
	requests []genai.Request

	// Respond overrides the default echo behavior when set.
	Respond func(ctx context.Context, req genai.Request) (*genai.Response, error)
	// Block, when non-nil, is received from before responding.
	Block chan struct{}
}

func New() *Generator { return &Generator{} }

// WithResponse returns a generator that always answers resp.
func WithResponse(resp *genai.Response) *Generator {
	return &Generator{Respond: func(context.Context, genai.Request) (*genai.Response, error) {
		return resp, nil
	}}
}

// WithError returns a generator that always fails with err.
func WithError(err error) *Generator {
	return &Generator{Respond: func(context.Context, genai.Request) (*genai.Response, error) {
		return nil, err
	}}
}

func (g *Generator) Generate(ctx context.Context, req genai.Request) (*genai.Response, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	block := g.Block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.Respond != nil {
		return g.Respond(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	primary := req.Images[0]
	return &genai.Response{Parts: []genai.Part{
		{Text: "rendered"},
		{Image: &genai.InlineImage{Data: primary.Data, MimeType: primary.MimeType}},
	}}, nil
}

// Requests returns the requests received so far.
func (g *Generator) Requests() []genai.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]genai.Request, len(g.requests))
	copy(out, g.requests)
	return out
}

// Calls returns how many requests were received.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}
