package ledger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryLedger is an in-memory implementation of core.Ledger.
// Ids are never evicted for the life of the process.
type MemoryLedger struct {
	ids    map[string]struct{}
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemoryLedger creates a new in-memory ledger
func NewMemoryLedger(logger *zap.Logger) *MemoryLedger {
	return &MemoryLedger{
		ids:    make(map[string]struct{}),
		logger: logger,
	}
}

// Contains reports whether id has been processed
func (l *MemoryLedger) Contains(ctx context.Context, id string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.ids[id]
	return ok, nil
}

// Add marks id as processed
func (l *MemoryLedger) Add(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ids[id] = struct{}{}
	l.logger.Debug("Message recorded in ledger", zap.String("message_id", id), zap.Int("size", len(l.ids)))
	return nil
}

// Size returns the number of processed ids
func (l *MemoryLedger) Size(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.ids), nil
}
