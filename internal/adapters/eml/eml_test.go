package eml

import (
	"strings"
	"testing"

	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/nalgeon/be"
)

const multipartMessage = "From: Jane Doe <jane@acme.test>\r\n" +
	"To: sales@example.com\r\n" +
	"Subject: =?utf-8?q?Quote_request_=E2=80=93_website?=\r\n" +
	"Message-Id: <abc@acme.test>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Hello</p>\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=iso-8859-1\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"Caf=E9 owner here, what do you charge?\r\n" +
	"--XYZ--\r\n"

func TestParseMultipart(t *testing.T) {
	raw, err := Parse(strings.NewReader(multipartMessage), "")
	be.Err(t, err, nil)
	be.Equal(t, raw.ID, "abc@acme.test")

	msg := core.Decode(raw)
	be.Equal(t, msg.From, "Jane Doe <jane@acme.test>")
	be.Equal(t, msg.To, "sales@example.com")
	be.Equal(t, msg.Subject, "Quote request – website")
	be.Equal(t, strings.TrimSpace(msg.Body), "Café owner here, what do you charge?")
}

func TestParseSinglePart(t *testing.T) {
	message := "From: bob@example.org\r\nSubject: Hi\r\n\r\nJust saying hello.\r\n"

	raw, err := Parse(strings.NewReader(message), "local-1")
	be.Err(t, err, nil)
	be.Equal(t, raw.ID, "local-1")

	msg := core.Decode(raw)
	be.Equal(t, msg.Subject, "Hi")
	be.Equal(t, msg.To, "")
	be.Equal(t, msg.Body, "Just saying hello.\r\n")
}

const nestedMessage = "From: jane@acme.test\r\n" +
	"Subject: Brochure\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=OUTER\r\n" +
	"\r\n" +
	"--OUTER\r\n" +
	"Content-Type: multipart/alternative; boundary=INNER\r\n" +
	"\r\n" +
	"--INNER\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Nested text\r\n" +
	"--INNER\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Nested text</p>\r\n" +
	"--INNER--\r\n" +
	"--OUTER\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Disposition: attachment; filename=notes.txt\r\n" +
	"\r\n" +
	"attached notes\r\n" +
	"--OUTER--\r\n"

func TestParseKeepsNestedStructure(t *testing.T) {
	raw, err := Parse(strings.NewReader(nestedMessage), "n1")
	be.Err(t, err, nil)

	be.Equal(t, raw.Payload.MimeType, "multipart/mixed")
	be.Equal(t, len(raw.Payload.Parts), 1)

	alt := raw.Payload.Parts[0]
	be.Equal(t, alt.MimeType, "multipart/alternative")
	be.Equal(t, alt.Data, "")
	be.Equal(t, len(alt.Parts), 2)
	be.Equal(t, alt.Parts[0].MimeType, "text/plain")

	// Only direct text/plain children are read, same as for mailbox messages.
	be.Equal(t, core.Decode(raw).Body, "")
}
