// Package eml turns RFC 822 messages into provider-neutral raw messages so
// local files can run through the same decoder as mailbox messages.
package eml

import (
	"encoding/base64"
	"fmt"
	"io"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-lead-responder/internal/core"
)

// Parse reads an RFC 822 message into the same part tree a mailbox returns.
// Single-part bodies become inline payload data. A multipart body keeps its
// structure: each direct child is a sub-part and nested multiparts keep their
// own children, so a text/plain part inside multipart/alternative under
// multipart/mixed is not promoted to the top level. Leaf bodies are
// transfer- and charset-decoded; attachments are skipped.
func Parse(r io.Reader, id string) (*core.RawMessage, error) {
	e, err := message.Read(r)
	if err != nil && !isRecoverable(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	payload, err := convertEntity(e)
	if err != nil {
		return nil, err
	}

	h := mail.Header{Header: e.Header}
	for _, name := range []string{"Subject", "From", "To", "Message-Id"} {
		if v := headerText(&h, name); v != "" {
			payload.Headers = append(payload.Headers, core.Header{Name: name, Value: v})
		}
	}

	if id == "" {
		id = headerText(&h, "Message-Id")
	}

	return &core.RawMessage{
		ID:       id,
		ThreadID: id,
		Payload:  payload,
	}, nil
}

func convertEntity(e *message.Entity) (*core.RawPart, error) {
	mimeType, _, _ := e.Header.ContentType()
	if mimeType == "" {
		mimeType = "text/plain"
	}
	part := &core.RawPart{MimeType: mimeType}

	if mr := e.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil && !isRecoverable(err) {
				return nil, fmt.Errorf("failed to read message part: %w", err)
			}
			if isAttachment(p) {
				continue
			}

			child, err := convertEntity(p)
			if err != nil {
				return nil, err
			}
			part.Parts = append(part.Parts, child)
		}
		return part, nil
	}

	body, err := io.ReadAll(e.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message part: %w", err)
	}
	part.Data = base64.URLEncoding.EncodeToString(body)
	return part, nil
}

// isRecoverable reports errors after which the entity is still readable
func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func isAttachment(e *message.Entity) bool {
	disp, _, err := e.Header.ContentDisposition()
	return err == nil && disp == "attachment"
}

// headerText returns a header with RFC 2047 words decoded
func headerText(h *mail.Header, name string) string {
	if name == "Message-Id" {
		if id, err := h.MessageID(); err == nil && id != "" {
			return id
		}
	}
	v, err := h.Text(name)
	if err != nil {
		return h.Get(name)
	}
	return v
}
