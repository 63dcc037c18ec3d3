package factory

import (
	"fmt"

	"github.com/mikey/llm-lead-responder/internal/adapters/httpapi"
	"github.com/mikey/llm-lead-responder/internal/adapters/scheduler"
	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/mikey/llm-lead-responder/internal/logging"
	"github.com/mikey/llm-lead-responder/internal/ports"
	"go.uber.org/zap"
)

// RunnerFactory creates the long-lived components of the daemon
type RunnerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.LeadResponderService
	ring    *logging.Ring
}

// NewRunnerFactory creates a new runner factory
func NewRunnerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.LeadResponderService,
	ring *logging.Ring,
) *RunnerFactory {
	return &RunnerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		ring:    ring,
	}
}

// CreateRunners returns the HTTP server and the scheduler, in start order
func (f *RunnerFactory) CreateRunners() ([]ports.Runner, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}
	pollCfg, err := f.cfg.GetPoll()
	if err != nil {
		return nil, err
	}

	server := httpapi.NewServer(
		f.service,
		f.ring,
		f.logger.Named("http"),
		fmt.Sprintf(":%d", serverCfg.Port),
		serverCfg.ReadTimeout,
		serverCfg.WriteTimeout,
	)
	sched := scheduler.NewScheduler(
		f.service,
		f.logger.Named("scheduler"),
		pollCfg.Interval,
		pollCfg.RunOnStart,
	)

	return []ports.Runner{server, sched}, nil
}
