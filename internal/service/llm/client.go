// Package llm defines the interface for chat completion providers.
package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string
	Content string
}

// DefaultTemperature leaves the sampling temperature to the provider's
// default, for free-form answers where determinism is not required.
const DefaultTemperature float32 = -1

// Completer sends an ordered message sequence to a completion provider and
// returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, messages []Message, model string, temperature float32) (string, error)
}

// ServiceError wraps a failure from the external completion provider.
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service (model %s): %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// OpenAI implements Completer against the OpenAI chat completion API.
type OpenAI struct {
	cli *openai.Client
}

// NewOpenAI creates a new OpenAI completion client. baseURL may be empty for
// the default endpoint, or point at an OpenAI-compatible gateway.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{cli: openai.NewClientWithConfig(cfg)}
}

// Complete sends the message sequence and returns the first choice's text.
// A temperature of 0 requests deterministic sampling; DefaultTemperature
// omits the field so the provider default applies.
func (c *OpenAI) Complete(ctx context.Context, messages []Message, model string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	if temperature >= 0 {
		req.Temperature = temperature
		if temperature == 0 {
			// go-openai omits a zero temperature from the wire request;
			// the smallest nonzero value is deterministic in practice.
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ServiceError{Model: model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Model: model, Err: fmt.Errorf("response contained no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
