package openai

import (
	"context"
	"fmt"

	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// chatCompleter is the subset of *openai.Client used here
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client    chatCompleter
	modelName string
	topP      float32
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(client chatCompleter, modelName string, topP float32, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:    client,
		modelName: modelName,
		topP:      topP,
		logger:    logger,
	}
}

// Complete sends the prompt as a chat completion and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", core.ErrEmptyCompletion)
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}
