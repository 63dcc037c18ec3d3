package core

import (
	"context"
)

// CompletionRequest is a single prompt submitted to an inference provider
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete returns the completion text for the request
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// MessageRef is a listing stub for a mailbox message
type MessageRef struct {
	ID       string
	ThreadID string
}

// Header is a single message header
type Header struct {
	Name  string
	Value string
}

// RawPart is a provider message payload or one of its sub-parts.
// Data holds the base64url encoded body bytes as delivered by the provider.
type RawPart struct {
	MimeType string
	Headers  []Header
	Data     string
	Parts    []*RawPart
}

// RawMessage is a full provider message before decoding
type RawMessage struct {
	ID       string
	ThreadID string
	Payload  *RawPart
}

// Label is a mailbox label
type Label struct {
	ID   string
	Name string
}

// DraftRequest is a reply draft to be created on a thread
type DraftRequest struct {
	ThreadID string
	// Raw is the base64url encoded reply envelope
	Raw string
}

// Mailbox defines the interface for the remote mailbox service
type Mailbox interface {
	// ListUnread returns up to max unread message stubs
	ListUnread(ctx context.Context, max int) ([]MessageRef, error)

	// GetMessage fetches a full message by id
	GetMessage(ctx context.Context, id string) (*RawMessage, error)

	// CreateDraft creates a draft and returns its provider id
	CreateDraft(ctx context.Context, draft DraftRequest) (string, error)

	// ListLabels returns all labels of the mailbox
	ListLabels(ctx context.Context) ([]Label, error)

	// CreateLabel creates a visible label and returns it
	CreateLabel(ctx context.Context, name string) (*Label, error)

	// AddLabel adds a label to a message without touching its other labels
	AddLabel(ctx context.Context, messageID, labelID string) error
}

// Ledger records message ids that have already been handled
type Ledger interface {
	// Contains reports whether id has been processed
	Contains(ctx context.Context, id string) (bool, error)

	// Add marks id as processed
	Add(ctx context.Context, id string) error

	// Size returns the number of processed ids
	Size(ctx context.Context) (int, error)
}

// Pacer spaces out consecutive candidates within a cycle
type Pacer interface {
	Wait(ctx context.Context) error
}
