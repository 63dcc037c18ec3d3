package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/nalgeon/be"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, mux *http.ServeMux, cfg config.GmailConfig) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := gmailapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	be.Err(t, err, nil)

	return NewClientWithService(svc, cfg, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestListAndGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		be.Equal(t, r.URL.Query().Get("q"), "is:unread")
		be.Equal(t, r.URL.Query().Get("maxResults"), "10")
		writeJSON(w, map[string]interface{}{
			"messages": []map[string]string{{"id": "m1", "threadId": "t1"}, {"id": "m2", "threadId": "t2"}},
		})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		be.Equal(t, r.PathValue("id"), "m1")
		be.Equal(t, r.URL.Query().Get("format"), "full")
		writeJSON(w, map[string]interface{}{
			"id":       "m1",
			"threadId": "t1",
			"payload": map[string]interface{}{
				"mimeType": "multipart/alternative",
				"headers":  []map[string]string{{"name": "Subject", "value": "Pricing"}},
				"parts": []map[string]interface{}{
					{"mimeType": "text/html", "body": map[string]string{"data": "PGI-aGk8L2I-"}},
					{"mimeType": "text/plain", "body": map[string]string{"data": "aGk="}},
				},
			},
		})
	})

	client := newTestClient(t, mux, config.GmailConfig{})

	refs, err := client.ListUnread(context.Background(), 10)
	be.Err(t, err, nil)
	be.Equal(t, refs, []core.MessageRef{{ID: "m1", ThreadID: "t1"}, {ID: "m2", ThreadID: "t2"}})

	raw, err := client.GetMessage(context.Background(), "m1")
	be.Err(t, err, nil)

	msg := core.Decode(raw)
	be.Equal(t, msg.ID, "m1")
	be.Equal(t, msg.ThreadID, "t1")
	be.Equal(t, msg.Subject, "Pricing")
	be.Equal(t, msg.Body, "hi")
}

func TestDraftAndLabels(t *testing.T) {
	var draft gmailapi.Draft
	var modify gmailapi.ModifyMessageRequest
	var created gmailapi.Label

	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", func(w http.ResponseWriter, r *http.Request) {
		be.Err(t, json.NewDecoder(r.Body).Decode(&draft), nil)
		writeJSON(w, map[string]string{"id": "d1"})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"labels": []map[string]string{{"id": "Label_1", "name": "lead"}}})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		be.Err(t, json.NewDecoder(r.Body).Decode(&created), nil)
		writeJSON(w, map[string]string{"id": "Label_2", "name": created.Name})
	})
	mux.HandleFunc("POST /gmail/v1/users/me/messages/{id}/modify", func(w http.ResponseWriter, r *http.Request) {
		be.Equal(t, r.PathValue("id"), "m1")
		be.Err(t, json.NewDecoder(r.Body).Decode(&modify), nil)
		writeJSON(w, map[string]string{"id": "m1"})
	})

	client := newTestClient(t, mux, config.GmailConfig{})
	ctx := context.Background()

	id, err := client.CreateDraft(ctx, core.DraftRequest{ThreadID: "t1", Raw: "cmF3"})
	be.Err(t, err, nil)
	be.Equal(t, id, "d1")
	be.Equal(t, draft.Message.ThreadId, "t1")
	be.Equal(t, draft.Message.Raw, "cmF3")

	labels, err := client.ListLabels(ctx)
	be.Err(t, err, nil)
	be.Equal(t, labels, []core.Label{{ID: "Label_1", Name: "lead"}})

	label, err := client.CreateLabel(ctx, "other")
	be.Err(t, err, nil)
	be.Equal(t, *label, core.Label{ID: "Label_2", Name: "other"})
	be.Equal(t, created.LabelListVisibility, "labelShow")
	be.Equal(t, created.MessageListVisibility, "show")

	be.Err(t, client.AddLabel(ctx, "m1", "Label_2"), nil)
	be.Equal(t, modify.AddLabelIds, []string{"Label_2"})
	be.Equal(t, len(modify.RemoveLabelIds), 0)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
	})

	client := newTestClient(t, mux, config.GmailConfig{MaxFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := client.ListLabels(context.Background())
		be.True(t, err != nil)
	}
	_, err := client.ListLabels(context.Background())
	be.True(t, errors.Is(err, gobreaker.ErrOpenState))
	be.Equal(t, calls.Load(), int32(2))
	be.Equal(t, client.State(), "open")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	})

	client := newTestClient(t, mux, config.GmailConfig{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := client.GetMessage(context.Background(), "gone")
		be.True(t, err != nil)
		be.True(t, !errors.Is(err, gobreaker.ErrOpenState))
	}
	be.Equal(t, client.State(), "closed")
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	client := newTestClient(t, mux, config.GmailConfig{MaxFailures: 1, OpenTimeout: time.Minute})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := client.ListLabels(cancelled)
		be.True(t, err != nil)
		be.True(t, !errors.Is(err, gobreaker.ErrOpenState))
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.ListLabels(ctx)
		cancel()
		be.True(t, errors.Is(err, context.DeadlineExceeded))
	}
	be.Equal(t, client.State(), "closed")
}

func TestBreakerCountsRequestTimeouts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	client := newTestClient(t, mux, config.GmailConfig{
		MaxFailures:    1,
		OpenTimeout:    time.Minute,
		RequestTimeout: 20 * time.Millisecond,
	})

	_, err := client.ListLabels(context.Background())
	be.True(t, errors.Is(err, context.DeadlineExceeded))
	be.Equal(t, client.State(), "open")
}
