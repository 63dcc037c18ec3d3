package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// errCallerAborted marks calls cut short by the caller's context rather
// than by the API or the per-call request timeout
var errCallerAborted = errors.New("call aborted by caller")

// Client is an implementation of the core.Mailbox interface using the Gmail API
type Client struct {
	svc     *gmailapi.Service
	user    string
	query   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a Gmail client authorized with a long-lived refresh token
func NewClient(ctx context.Context, cfg config.GmailConfig, logger *zap.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("gmail client id, client secret and refresh token are required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmailapi.GmailModifyScope,
			gmailapi.GmailComposeScope,
			gmailapi.GmailLabelsScope,
		},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewClientWithService(svc, cfg, logger), nil
}

// NewClientWithService wraps an existing Gmail service
func NewClientWithService(svc *gmailapi.Service, cfg config.GmailConfig, logger *zap.Logger) *Client {
	user := cfg.User
	if user == "" {
		user = "me"
	}
	query := cfg.Query
	if query == "" {
		query = "is:unread"
	}
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		// Client errors and our own cancellations say nothing about the
		// health of the API
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerAborted) || !isServerError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		svc:     svc,
		user:    user,
		query:   query,
		timeout: cfg.RequestTimeout,
		cb:      cb,
		logger:  logger,
	}
}

// ListUnread returns up to max messages matching the poll query
func (c *Client) ListUnread(ctx context.Context, max int) ([]core.MessageRef, error) {
	var resp *gmailapi.ListMessagesResponse
	err := c.execute(ctx, "list messages", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Users.Messages.List(c.user).Q(c.query).MaxResults(int64(max)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	refs := make([]core.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, core.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// GetMessage fetches the full message
func (c *Client) GetMessage(ctx context.Context, id string) (*core.RawMessage, error) {
	var msg *gmailapi.Message
	err := c.execute(ctx, "get message", func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Users.Messages.Get(c.user, id).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &core.RawMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Payload:  convertPart(msg.Payload),
	}, nil
}

// CreateDraft creates a draft reply on the request's thread
func (c *Client) CreateDraft(ctx context.Context, draft core.DraftRequest) (string, error) {
	var created *gmailapi.Draft
	err := c.execute(ctx, "create draft", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Users.Drafts.Create(c.user, &gmailapi.Draft{
			Message: &gmailapi.Message{
				Raw:      draft.Raw,
				ThreadId: draft.ThreadID,
			},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// ListLabels returns all labels of the mailbox
func (c *Client) ListLabels(ctx context.Context) ([]core.Label, error) {
	var resp *gmailapi.ListLabelsResponse
	err := c.execute(ctx, "list labels", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Users.Labels.List(c.user).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	labels := make([]core.Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, core.Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

// CreateLabel creates a label shown in both the label and message lists
func (c *Client) CreateLabel(ctx context.Context, name string) (*core.Label, error) {
	var created *gmailapi.Label
	err := c.execute(ctx, "create label", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Users.Labels.Create(c.user, &gmailapi.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &core.Label{ID: created.Id, Name: created.Name}, nil
}

// AddLabel adds a label to a message
func (c *Client) AddLabel(ctx context.Context, messageID, labelID string) error {
	return c.execute(ctx, "modify message", func(ctx context.Context) error {
		_, err := c.svc.Users.Messages.Modify(c.user, messageID, &gmailapi.ModifyMessageRequest{
			AddLabelIds: []string{labelID},
		}).Context(ctx).Do()
		return err
	})
}

// State returns the circuit breaker state
func (c *Client) State() string {
	return c.cb.State().String()
}

// execute runs fn under the request timeout and circuit breaker
func (c *Client) execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	parent := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	_, err := c.cb.Execute(func() (interface{}, error) {
		err := fn(ctx)
		if err != nil && parent.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerAborted, err)
		}
		return nil, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("Gmail call rejected by circuit breaker", zap.String("operation", operation))
		}
		return fmt.Errorf("gmail: failed to %s: %w", operation, err)
	}
	return nil
}

// isServerError reports whether err indicates the API itself is unhealthy
func isServerError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}
	// Transport failures and timeouts
	return true
}

func convertPart(p *gmailapi.MessagePart) *core.RawPart {
	if p == nil {
		return nil
	}

	part := &core.RawPart{MimeType: p.MimeType}
	for _, h := range p.Headers {
		part.Headers = append(part.Headers, core.Header{Name: h.Name, Value: h.Value})
	}
	if p.Body != nil {
		part.Data = p.Body.Data
	}
	for _, sub := range p.Parts {
		part.Parts = append(part.Parts, convertPart(sub))
	}
	return part
}
