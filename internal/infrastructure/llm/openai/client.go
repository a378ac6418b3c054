package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

// Client talks to any OpenAI-compatible chat completions API
// (OpenAI, LM Studio, vLLM, llama.cpp server).
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	executor    *resilience.Executor
}

func New(baseURL, apiKey, model string, temperature float64, executor *resilience.Executor) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: float32(temperature),
		executor:    executor,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var reply string
	call := func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai.chat", call, classifyOpenAIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", resilience.MarkTemporary("openai chat", err, classifyOpenAIError)
	}
	return reply, nil
}

// Ping lists models and checks the configured one is served.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("openai list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q is not served by the OpenAI-compatible backend", c.model)
}

var classifyOpenAIError = resilience.Rules{
	Transient: func(err error) bool {
		if status := statusOf(err); status != 0 {
			return resilience.IsRetryableHTTPStatus(status)
		}
		return resilience.IsNetworkError(err)
	},
	Permanent: func(err error) bool {
		status := statusOf(err)
		return status != 0 && !resilience.IsRetryableHTTPStatus(status)
	},
}.Classify

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
