package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/llm-lead-responder/internal/utils"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCompletion is returned when the provider yields no text
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrVerdictSchema is returned when the verdict object lacks required fields
	ErrVerdictSchema = errors.New("verdict missing required fields")
)

const classifierSystemPrompt = "You classify inbound business email. Respond only with JSON."

const classifierPromptFormat = `Analyze the following email and decide whether it is a business lead:
a potential customer or partner asking about our services.

Count as a lead:
- inquiries about services, products or capabilities
- pricing, quote or availability requests
- partnership or collaboration proposals
- requests for a meeting or consultation about our work

Do NOT count as a lead:
- personal correspondence
- spam, promotions and marketing blasts
- newsletters and mailing lists
- social network notifications and automated alerts
- internal company mail

Respond with a JSON object containing exactly these fields:
- isLead: boolean
- confidence: number between 0 and 1
- reason: string, one short sentence
- keywords: array of strings that drove the decision

Email:
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// verdictResponse mirrors the JSON object requested from the model.
// Pointers distinguish missing fields from zero values.
type verdictResponse struct {
	IsLead     *bool    `json:"isLead"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
	Keywords   []string `json:"keywords"`
}

// LeadClassifier decides whether a message is a business lead
type LeadClassifier struct {
	llm           LLMClient
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	temperature   float32
	maxTokens     int
	maxBodySize   int
}

// NewLeadClassifier creates a new lead classifier
func NewLeadClassifier(
	llm LLMClient,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	temperature float32,
	maxTokens int,
	maxBodySize int,
) *LeadClassifier {
	return &LeadClassifier{
		llm:           llm,
		logger:        logger,
		textProcessor: textProcessor,
		temperature:   temperature,
		maxTokens:     maxTokens,
		maxBodySize:   maxBodySize,
	}
}

// Classify judges subject and body. Any failure yields FallbackVerdict.
func (c *LeadClassifier) Classify(ctx context.Context, subject, body string) Verdict {
	prompt := fmt.Sprintf(classifierPromptFormat, subject, c.textProcessor.ProcessText(body, c.maxBodySize))

	text, err := c.llm.Complete(ctx, CompletionRequest{
		System:      classifierSystemPrompt,
		Prompt:      prompt,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.logger.Error("Lead classification failed", zap.String("subject", subject), zap.Error(err))
		return FallbackVerdict()
	}

	verdict, err := ParseVerdict(text)
	if err != nil {
		c.logger.Error("Failed to parse classification response",
			zap.String("subject", subject),
			zap.String("response", text),
			zap.Error(err))
		return FallbackVerdict()
	}

	c.logger.Debug("Message classified",
		zap.String("subject", subject),
		zap.Bool("is_lead", verdict.IsLead),
		zap.Float64("confidence", verdict.Confidence),
		zap.Strings("keywords", verdict.Keywords))

	return verdict
}

// ParseVerdict parses model output into a Verdict. Prose or code fences
// around the JSON object are tolerated.
func ParseVerdict(text string) (Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Verdict{}, ErrEmptyCompletion
	}

	var resp verdictResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return Verdict{}, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		resp = verdictResponse{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
			return Verdict{}, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	if resp.IsLead == nil || resp.Confidence == nil {
		return Verdict{}, ErrVerdictSchema
	}

	return NewVerdict(*resp.IsLead, *resp.Confidence, resp.Reason, resp.Keywords), nil
}
