// Package anthropic provides a token-only engine backed by the Anthropic
// Messages API. It implements core.TokenEngine: only plain text fragments are
// streamed, so runs driven through it carry no tool or step events.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentwire/core"
)

// Options configure the Anthropic engine adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Engine wraps the Anthropic Messages API behind core.TokenEngine.
type Engine struct {
	client *anthropic.Client
	opts   Options
}

// Interface compliance (compile-time assertion)
var _ core.TokenEngine = (*Engine)(nil)

// New creates a new Anthropic engine using the official client
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Engine{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic engine from an existing client
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{client: client, opts: opts}
}

// StreamTokens implements core.TokenEngine. Text deltas are forwarded as they
// arrive; a streaming failure is delivered on the error channel after the
// token channel closes.
func (e *Engine) StreamTokens(ctx context.Context, input string) (<-chan string, <-chan error, error) {
	tokenCh := make(chan string, 32)
	errCh := make(chan error, 1)

	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}

	go func() {
		defer close(tokenCh)
		defer close(errCh)

		stream := e.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()

			deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}

			textDelta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta)
			if !ok || textDelta.Text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case tokenCh <- textDelta.Text:
			}
		}

		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()

	return tokenCh, errCh, nil
}
