package factory

import (
	"fmt"

	"github.com/mikey/llm-lead-responder/internal/adapters/ledger"
	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"go.uber.org/zap"
)

// LedgerFactory creates processing ledgers based on configuration
type LedgerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLedgerFactory creates a new ledger factory
func NewLedgerFactory(cfg *config.Config, logger *zap.Logger) *LedgerFactory {
	return &LedgerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLedger creates a ledger based on the configuration
func (f *LedgerFactory) CreateLedger() (core.Ledger, error) {
	ledgerCfg := f.cfg.GetLedger()

	switch ledgerCfg.Type {
	case "memory":
		return ledger.NewMemoryLedger(f.logger), nil
	case "sqlite":
		return ledger.NewSQLiteLedger(ledgerCfg.SQLiteDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerCfg.Type)
	}
}
