package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/llm-lead-responder/internal/utils"
	"go.uber.org/zap"
)

const (
	// LeadFallbackReply is used when a lead reply cannot be generated
	LeadFallbackReply = "Thank you for reaching out! We have received your inquiry and a member of our team will get back to you shortly with more details."
	// OtherFallbackReply is used when a non-lead reply cannot be generated
	OtherFallbackReply = "Thank you for your email. We have received your message and will respond if any follow-up is needed."
)

const drafterSystemPrompt = "You write email replies on behalf of a professional services business. Reply with the email body only."

const leadReplyPromptFormat = `Write a reply to the following business inquiry.

The reply must:
- be warm, professional and concise
- thank the sender for reaching out
- acknowledge the specific inquiry they made
- offer general information about our services without inventing prices, names or commitments
- end with a clear call to action, such as scheduling a call

Do not include a subject line.

Original email:
From: %s
Subject: %s
Body:
%s`

const otherReplyPromptFormat = `Write a brief, polite acknowledgment reply to the following email.
Do not promote any services. Keep it to two or three sentences and do not include a subject line.

Original email:
From: %s
Subject: %s
Body:
%s`

// ResponseDrafter generates reply text for inbound messages
type ResponseDrafter struct {
	llm           LLMClient
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	temperature   float32
	maxTokens     int
	maxBodySize   int
}

// NewResponseDrafter creates a new response drafter
func NewResponseDrafter(
	llm LLMClient,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	temperature float32,
	maxTokens int,
	maxBodySize int,
) *ResponseDrafter {
	return &ResponseDrafter{
		llm:           llm,
		logger:        logger,
		textProcessor: textProcessor,
		temperature:   temperature,
		maxTokens:     maxTokens,
		maxBodySize:   maxBodySize,
	}
}

// Draft returns reply text for msg. The result is never empty.
func (d *ResponseDrafter) Draft(ctx context.Context, msg InboundMessage, isLead bool) string {
	format, fallback := otherReplyPromptFormat, OtherFallbackReply
	if isLead {
		format, fallback = leadReplyPromptFormat, LeadFallbackReply
	}

	body := d.textProcessor.ProcessText(msg.Body, d.maxBodySize)
	text, err := d.llm.Complete(ctx, CompletionRequest{
		System:      drafterSystemPrompt,
		Prompt:      fmt.Sprintf(format, msg.From, msg.Subject, body),
		Temperature: d.temperature,
		MaxTokens:   d.maxTokens,
	})
	if err != nil {
		d.logger.Error("Reply generation failed, using fallback",
			zap.String("message_id", msg.ID),
			zap.Bool("is_lead", isLead),
			zap.Error(err))
		return fallback
	}

	text = strings.TrimSpace(text)
	if text == "" {
		d.logger.Warn("Reply generation returned no text, using fallback",
			zap.String("message_id", msg.ID),
			zap.Bool("is_lead", isLead))
		return fallback
	}

	return text
}
