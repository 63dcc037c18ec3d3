package core

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// ReplyEnvelope is the reply message submitted as a draft
type ReplyEnvelope struct {
	To         string
	Subject    string
	InReplyTo  string
	References string
	Body       string
}

// NewReplyEnvelope builds the reply to originalID
func NewReplyEnvelope(originalID, to, subject, body string) ReplyEnvelope {
	return ReplyEnvelope{
		To:         to,
		Subject:    "Re: " + subject,
		InReplyTo:  originalID,
		References: originalID,
		Body:       body,
	}
}

// Bytes renders the envelope as an RFC 822 message with a quoted-printable body
func (e ReplyEnvelope) Bytes() ([]byte, error) {
	var h mail.Header
	h.Set("To", sanitizeHeader(e.To))
	h.SetSubject(sanitizeHeader(e.Subject))
	h.Set("In-Reply-To", sanitizeHeader(e.InReplyTo))
	h.Set("References", sanitizeHeader(e.References))
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/plain", map[string]string{"charset": "UTF-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to write reply headers: %w", err)
	}
	if _, err := io.WriteString(w, e.Body); err != nil {
		return nil, fmt.Errorf("failed to write reply body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to write reply body: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode returns the envelope in the provider's base64url transport encoding
func (e ReplyEnvelope) Encode() (string, error) {
	raw, err := e.Bytes()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// sanitizeHeader keeps header values on a single line
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// Dispatcher creates reply drafts and applies routing labels
type Dispatcher struct {
	mailbox Mailbox
	logger  *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(mailbox Mailbox, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailbox: mailbox,
		logger:  logger,
	}
}

// CreateDraft creates a threaded reply draft. Failures are returned to the caller.
func (d *Dispatcher) CreateDraft(ctx context.Context, originalID, to, subject, text, threadID string) (string, error) {
	raw, err := NewReplyEnvelope(originalID, to, subject, text).Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode reply for message %s: %w", originalID, err)
	}

	draftID, err := d.mailbox.CreateDraft(ctx, DraftRequest{
		ThreadID: threadID,
		Raw:      raw,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create draft for message %s: %w", originalID, err)
	}

	d.logger.Info("Draft created",
		zap.String("message_id", originalID),
		zap.String("thread_id", threadID),
		zap.String("draft_id", draftID))

	return draftID, nil
}

// ApplyLabel adds the named label to a message, creating the label if it
// does not exist yet. Failures are logged and reported as false.
func (d *Dispatcher) ApplyLabel(ctx context.Context, messageID, labelName string) bool {
	labelID, err := d.resolveLabel(ctx, labelName)
	if err != nil {
		d.logger.Error("Failed to resolve label",
			zap.String("message_id", messageID),
			zap.String("label", labelName),
			zap.Error(err))
		return false
	}

	if err := d.mailbox.AddLabel(ctx, messageID, labelID); err != nil {
		d.logger.Error("Failed to apply label",
			zap.String("message_id", messageID),
			zap.String("label", labelName),
			zap.Error(err))
		return false
	}

	d.logger.Debug("Label applied",
		zap.String("message_id", messageID),
		zap.String("label", labelName),
		zap.String("label_id", labelID))
	return true
}

// resolveLabel returns the id of the exact-named label, creating it if needed
func (d *Dispatcher) resolveLabel(ctx context.Context, name string) (string, error) {
	labels, err := d.mailbox.ListLabels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, nil
		}
	}

	created, err := d.mailbox.CreateLabel(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}
	d.logger.Info("Label created", zap.String("label", name), zap.String("label_id", created.ID))

	return created.ID, nil
}
