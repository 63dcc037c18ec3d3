package core

import (
	"encoding/base64"
	"strings"
)

const plainTextMimeType = "text/plain"

// Decode converts a raw provider message into an InboundMessage.
// It never fails: anything missing degrades to an empty string.
func Decode(raw *RawMessage) InboundMessage {
	if raw == nil {
		return InboundMessage{}
	}

	msg := InboundMessage{
		ID:       raw.ID,
		ThreadID: raw.ThreadID,
	}
	if raw.Payload == nil {
		return msg
	}

	msg.Subject = headerValue(raw.Payload.Headers, "Subject")
	msg.From = headerValue(raw.Payload.Headers, "From")
	msg.To = headerValue(raw.Payload.Headers, "To")
	msg.Body = extractBody(raw.Payload)

	return msg
}

// headerValue does an exact, case-sensitive lookup
func headerValue(headers []Header, name string) string {
	for _, h := range headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// extractBody prefers the inline payload body, then the first text/plain
// sub-part. Nested multiparts are not searched.
func extractBody(payload *RawPart) string {
	if payload.Data != "" {
		return decodeData(payload.Data)
	}

	for _, part := range payload.Parts {
		if part != nil && part.MimeType == plainTextMimeType {
			return decodeData(part.Data)
		}
	}

	return ""
}

// decodeData decodes provider body data. Providers are not consistent about
// padding or alphabet, so each encoding is tried in turn.
func decodeData(data string) string {
	data = strings.TrimSpace(data)
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if b, err := enc.DecodeString(data); err == nil {
			return string(b)
		}
	}
	return ""
}
