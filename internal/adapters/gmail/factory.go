package gmail

import (
	"context"

	"github.com/mikey/llm-lead-responder/internal/config"
	"go.uber.org/zap"
)

// Factory creates Gmail mailbox clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Gmail factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates a new Gmail client
func (f *Factory) CreateClient(ctx context.Context) (*Client, error) {
	gmailCfg, err := f.cfg.GetGmail()
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, gmailCfg, f.logger)
}
