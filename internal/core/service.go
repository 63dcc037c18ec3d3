package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/llm-lead-responder/internal/senders"
	"go.uber.org/zap"
)

// ErrCycleInProgress is returned when a cycle is triggered while another runs
var ErrCycleInProgress = errors.New("poll cycle already in progress")

// CycleOptions controls the shape of a poll cycle
type CycleOptions struct {
	PageSize       int
	MessageTimeout time.Duration
}

// LeadResponderService is the poll cycle controller
type LeadResponderService struct {
	mailbox    Mailbox
	ledger     Ledger
	classifier *LeadClassifier
	drafter    *ResponseDrafter
	dispatcher *Dispatcher
	pacer      Pacer
	internal   *senders.DomainChecker
	logger     *zap.Logger
	opts       CycleOptions

	cycleMu sync.Mutex

	statsMu     sync.Mutex
	cyclesRun   int
	lastCycleAt time.Time
}

// NewLeadResponderService creates a new lead responder service
func NewLeadResponderService(
	mailbox Mailbox,
	ledger Ledger,
	classifier *LeadClassifier,
	drafter *ResponseDrafter,
	dispatcher *Dispatcher,
	pacer Pacer,
	internal *senders.DomainChecker,
	logger *zap.Logger,
	opts CycleOptions,
) *LeadResponderService {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &LeadResponderService{
		mailbox:    mailbox,
		ledger:     ledger,
		classifier: classifier,
		drafter:    drafter,
		dispatcher: dispatcher,
		pacer:      pacer,
		internal:   internal,
		logger:     logger,
		opts:       opts,
	}
}

// RunCycle lists unread mail and processes every candidate not yet in the
// ledger. Only a failure to list aborts the cycle; per-message failures are
// recorded in the report. Overlapping calls get ErrCycleInProgress.
func (s *LeadResponderService) RunCycle(ctx context.Context) (*CycleReport, error) {
	if !s.cycleMu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer s.cycleMu.Unlock()

	report := &CycleReport{
		Results:   []ProcessingResult{},
		StartedAt: time.Now(),
	}
	defer s.recordCycle(report)

	refs, err := s.mailbox.ListUnread(ctx, s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %w", err)
	}

	candidates := s.filterProcessed(ctx, refs)
	if len(candidates) == 0 {
		s.logger.Info("No new messages to process", zap.Int("listed", len(refs)))
		report.FinishedAt = time.Now()
		return report, nil
	}

	s.logger.Info("Processing new messages",
		zap.Int("listed", len(refs)),
		zap.Int("candidates", len(candidates)))

	for _, ref := range candidates {
		if err := s.pacer.Wait(ctx); err != nil {
			s.logger.Warn("Cycle interrupted", zap.Error(err))
			break
		}

		result := s.processMessage(ctx, ref)
		report.Results = append(report.Results, result)

		if err := s.ledger.Add(ctx, ref.ID); err != nil {
			s.logger.Error("Failed to record processed message",
				zap.String("message_id", ref.ID),
				zap.Error(err))
		}
	}

	report.ProcessedCount = len(report.Results)
	report.FinishedAt = time.Now()

	s.logger.Info("Poll cycle complete",
		zap.Int("processed", report.ProcessedCount),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

// filterProcessed drops refs already in the ledger
func (s *LeadResponderService) filterProcessed(ctx context.Context, refs []MessageRef) []MessageRef {
	candidates := make([]MessageRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		seen, err := s.ledger.Contains(ctx, ref.ID)
		if err != nil {
			s.logger.Error("Ledger lookup failed, skipping message",
				zap.String("message_id", ref.ID),
				zap.Error(err))
			continue
		}
		if !seen {
			candidates = append(candidates, ref)
		}
	}
	return candidates
}

// processMessage runs the full pipeline for one candidate. It never returns
// an error; failures become an unsuccessful result.
func (s *LeadResponderService) processMessage(ctx context.Context, ref MessageRef) (result ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while processing message",
				zap.String("message_id", ref.ID),
				zap.Any("panic", r))
			result = failedResult(ref.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	// Once started, a candidate runs to completion even if the caller goes
	// away; only MessageTimeout bounds it. Cancellation is honoured between
	// candidates at the pacer.
	ctx = context.WithoutCancel(ctx)
	if s.opts.MessageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MessageTimeout)
		defer cancel()
	}

	raw, err := s.mailbox.GetMessage(ctx, ref.ID)
	if err != nil {
		s.logger.Error("Failed to fetch message", zap.String("message_id", ref.ID), zap.Error(err))
		return failedResult(ref.ID, err)
	}

	msg := Decode(raw)
	if msg.ID == "" {
		msg.ID = ref.ID
	}
	if msg.ThreadID == "" {
		msg.ThreadID = ref.ThreadID
	}

	verdict := s.classify(ctx, msg)
	isLead := verdict.IsEffectiveLead()
	label := verdict.Label()

	s.logger.Info("Message classified",
		zap.String("message_id", msg.ID),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
		zap.Bool("is_lead", isLead),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("reason", verdict.Reason))

	text := s.drafter.Draft(ctx, msg, isLead)

	if _, err := s.dispatcher.CreateDraft(ctx, msg.ID, msg.From, msg.Subject, text, msg.ThreadID); err != nil {
		s.logger.Error("Failed to dispatch reply", zap.String("message_id", msg.ID), zap.Error(err))
		return failedResult(msg.ID, err)
	}

	labeled := s.dispatcher.ApplyLabel(ctx, msg.ID, label)

	return ProcessingResult{
		Success:    true,
		MessageID:  msg.ID,
		From:       msg.From,
		Subject:    msg.Subject,
		IsLead:     isLead,
		Confidence: verdict.Confidence,
		Label:      label,
		Labeled:    labeled,
	}
}

// classify short-circuits internal senders before calling the model
func (s *LeadResponderService) classify(ctx context.Context, msg InboundMessage) Verdict {
	if s.internal.Matches(msg.From) {
		s.logger.Debug("Skipping classification for internal sender",
			zap.String("message_id", msg.ID),
			zap.String("from", msg.From))
		return NewVerdict(false, 1, "internal sender", nil)
	}
	return s.classifier.Classify(ctx, msg.Subject, msg.Body)
}

func failedResult(id string, err error) ProcessingResult {
	return ProcessingResult{
		Success:   false,
		MessageID: id,
		Error:     err.Error(),
	}
}

func (s *LeadResponderService) recordCycle(report *CycleReport) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.cyclesRun++
	s.lastCycleAt = report.StartedAt
}

// Stats returns the current service statistics
func (s *LeadResponderService) Stats(ctx context.Context) (Stats, error) {
	processed, err := s.ledger.Size(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read ledger size: %w", err)
	}

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return Stats{
		ProcessedEmails: processed,
		CyclesRun:       s.cyclesRun,
		LastCycleAt:     s.lastCycleAt,
	}, nil
}
