package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-lead-responder/internal/core"
	"go.uber.org/zap"
)

// modelInvoker is the subset of *bedrockruntime.Client used here
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client  modelInvoker
	modelID string
	topP    float32
	logger  *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client modelInvoker, modelID string, topP float32, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		client:  client,
		modelID: modelID,
		topP:    topP,
		logger:  logger,
	}
}

// Complete invokes the configured model with a body shaped for its family
func (c *BedrockClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	payload, err := c.requestBody(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := c.responseText(resp.Body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("bedrock: %w", core.ErrEmptyCompletion)
	}

	c.logger.Debug("Bedrock completion received", zap.String("model", c.modelID))
	return text, nil
}

func (c *BedrockClient) requestBody(req core.CompletionRequest) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		body := map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        req.MaxTokens,
			"temperature":       req.Temperature,
			"top_p":             c.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": req.Prompt},
			},
		}
		if req.System != "" {
			body["system"] = req.System
		}
		return json.Marshal(body)
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": joinPrompt(req),
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": req.MaxTokens,
				"temperature":   req.Temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      joinPrompt(req),
			"max_tokens":  req.MaxTokens,
			"temperature": req.Temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *BedrockClient) responseText(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var b strings.Builder
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return b.String(), nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("titan: %w", core.ErrEmptyCompletion)
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Response   string `json:"response"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, s := range []string{genericResp.Output, genericResp.Text, genericResp.Response, genericResp.Generation} {
			if s != "" {
				return s, nil
			}
		}
		return string(body), nil
	}
}

// joinPrompt folds the system prompt into models without a system slot
func joinPrompt(req core.CompletionRequest) string {
	if req.System == "" {
		return req.Prompt
	}
	return req.System + "\n\n" + req.Prompt
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
