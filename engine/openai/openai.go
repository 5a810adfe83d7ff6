// Package openai provides a token-only engine backed by the OpenAI Chat
// Completions API. It implements core.TokenEngine: the model streams plain
// text fragments with no structured event vocabulary, so runs driven through
// it degrade to text-chunk wire events only.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentwire/core"
)

// Options configure the OpenAI engine adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Engine wraps the OpenAI Chat Completions API behind core.TokenEngine.
type Engine struct {
	client *openai.Client
	opts   Options
}

// Interface compliance (compile-time assertion)
var _ core.TokenEngine = (*Engine)(nil)

// New creates a new OpenAI engine using the official client
func New(optFns ...func(o *Options)) *Engine {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI engine from an existing client
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
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

	params := openai.ChatCompletionNewParams{
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(input)},
		Model:               e.opts.Model,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}

	go func() {
		defer close(tokenCh)
		defer close(errCh)

		stream := e.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}

				select {
				case <-ctx.Done():
					return
				case tokenCh <- choice.Delta.Content:
				}
			}
		}

		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()

	return tokenCh, errCh, nil
}
