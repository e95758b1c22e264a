package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("completion returned no choices")

type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAI builds a chat-completion client. baseURL may point at any
// OpenAI-compatible gateway; empty keeps the public endpoint.
func NewOpenAI(apiKey, baseURL, model string, temperature float32) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (Response, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: c.temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrNoChoices
	}

	return Response{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
