package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
)

type fakeLLM struct {
	mu       sync.Mutex
	classify func(req CompletionRequest) (string, error)
	draft    func(req CompletionRequest) (string, error)
	requests []CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	switch req.System {
	case classifierSystemPrompt:
		if f.classify == nil {
			return "", errors.New("no classifier response")
		}
		return f.classify(req)
	default:
		if f.draft == nil {
			return "", errors.New("no drafter response")
		}
		return f.draft(req)
	}
}

func (f *fakeLLM) calls(system string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.System == system {
			n++
		}
	}
	return n
}

func respond(text string) func(CompletionRequest) (string, error) {
	return func(CompletionRequest) (string, error) { return text, nil }
}

func fail(msg string) func(CompletionRequest) (string, error) {
	return func(CompletionRequest) (string, error) { return "", errors.New(msg) }
}

type fakeMailbox struct {
	mu sync.Mutex

	refs     []MessageRef
	messages map[string]*RawMessage
	labels   []Label

	listErr   error
	draftErr  error
	labelErr  error
	listBlock chan struct{}
	listing   chan struct{}
	listOnce  sync.Once

	fetched  []string
	drafts   []DraftRequest
	created  []string
	modified map[string][]string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		messages: map[string]*RawMessage{},
		modified: map[string][]string{},
	}
}

// addMessage registers an unread message with a single inline body
func (m *fakeMailbox) addMessage(id, from, subject, body string) {
	m.refs = append(m.refs, MessageRef{ID: id, ThreadID: "t-" + id})
	m.messages[id] = &RawMessage{
		ID:       id,
		ThreadID: "t-" + id,
		Payload: &RawPart{
			MimeType: "text/plain",
			Headers: []Header{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
				{Name: "To", Value: "sales@example.com"},
			},
			Data: base64.URLEncoding.EncodeToString([]byte(body)),
		},
	}
}

func (m *fakeMailbox) ListUnread(ctx context.Context, max int) ([]MessageRef, error) {
	if m.listing != nil {
		m.listOnce.Do(func() { close(m.listing) })
	}
	if m.listBlock != nil {
		<-m.listBlock
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := m.refs
	if len(refs) > max {
		refs = refs[:max]
	}
	return append([]MessageRef(nil), refs...), nil
}

func (m *fakeMailbox) GetMessage(ctx context.Context, id string) (*RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, id)
	raw, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s not found", id)
	}
	return raw, nil
}

func (m *fakeMailbox) CreateDraft(ctx context.Context, req DraftRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draftErr != nil {
		return "", m.draftErr
	}
	m.drafts = append(m.drafts, req)
	return fmt.Sprintf("d%d", len(m.drafts)), nil
}

func (m *fakeMailbox) ListLabels(ctx context.Context) ([]Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labelErr != nil {
		return nil, m.labelErr
	}
	return append([]Label(nil), m.labels...), nil
}

func (m *fakeMailbox) CreateLabel(ctx context.Context, name string) (*Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := Label{ID: fmt.Sprintf("Label_%d", len(m.labels)+1), Name: name}
	m.labels = append(m.labels, l)
	m.created = append(m.created, name)
	return &l, nil
}

func (m *fakeMailbox) AddLabel(ctx context.Context, messageID, labelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modified[messageID] = append(m.modified[messageID], labelID)
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	ids     map[string]struct{}
	failIDs map[string]bool
}

func newFakeLedger(ids ...string) *fakeLedger {
	l := &fakeLedger{ids: map[string]struct{}{}, failIDs: map[string]bool{}}
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
	return l
}

func (l *fakeLedger) Contains(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failIDs[id] {
		return false, errors.New("ledger unavailable")
	}
	_, ok := l.ids[id]
	return ok, nil
}

func (l *fakeLedger) Add(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids[id] = struct{}{}
	return nil
}

func (l *fakeLedger) Size(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids), nil
}

func (l *fakeLedger) has(id string) bool {
	ok, _ := l.Contains(context.Background(), id)
	return ok
}
