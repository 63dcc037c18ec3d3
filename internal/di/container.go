package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-lead-responder/internal/adapters/gmail"
	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/mikey/llm-lead-responder/internal/factory"
	"github.com/mikey/llm-lead-responder/internal/logging"
	"github.com/mikey/llm-lead-responder/internal/ports"
	"github.com/mikey/llm-lead-responder/internal/senders"
	"github.com/mikey/llm-lead-responder/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register log ring and logger
	if err := container.Provide(func(cfg *config.Config) *logging.Ring {
		return logging.NewRing(cfg.GetLogging().RingSize)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register mailbox
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.Mailbox, error) {
		return gmail.NewFactory(cfg, logger.Named("gmail")).CreateClient(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register ledger
	if err := container.Provide(factory.NewLedgerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LedgerFactory) (core.Ledger, error) {
		return f.CreateLedger()
	}); err != nil {
		return nil, err
	}

	// Register pacer
	if err := container.Provide(func(cfg *config.Config) (core.Pacer, error) {
		poll, err := cfg.GetPoll()
		if err != nil {
			return nil, err
		}
		return core.NewRatePacer(poll.Pacing), nil
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(core.NewDispatcher); err != nil {
		return nil, err
	}

	// Register lead responder service
	if err := container.Provide(func(
		cfg *config.Config,
		mailbox core.Mailbox,
		ledger core.Ledger,
		classifier *core.LeadClassifier,
		drafter *core.ResponseDrafter,
		dispatcher *core.Dispatcher,
		pacer core.Pacer,
		internal *senders.DomainChecker,
		logger *zap.Logger,
	) (*core.LeadResponderService, error) {
		poll, err := cfg.GetPoll()
		if err != nil {
			return nil, err
		}
		return core.NewLeadResponderService(
			mailbox,
			ledger,
			classifier,
			drafter,
			dispatcher,
			pacer,
			internal,
			logger,
			core.CycleOptions{
				PageSize:       poll.PageSize,
				MessageTimeout: poll.MessageTimeout,
			},
		), nil
	}); err != nil {
		return nil, err
	}

	// Register runners
	if err := container.Provide(factory.NewRunnerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RunnerFactory) ([]ports.Runner, error) {
		return f.CreateRunners()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers the LLM client, text processing, sender rules,
// classifier and drafter. It expects config and logger to be provided.
func provideCore(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register internal sender domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *senders.DomainChecker {
		return senders.NewDomainChecker(cfg.GetStringSlice("lead.internal_domains"), logger)
	}); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(
		cfg *config.Config,
		llm core.LLMClient,
		logger *zap.Logger,
		tp *utils.TextProcessor,
	) *core.LeadClassifier {
		gen := cfg.GetClassifier()
		return core.NewLeadClassifier(llm, logger.Named("classifier"), tp, gen.Temperature, gen.MaxTokens, cfg.GetMaxBodySize())
	}); err != nil {
		return err
	}

	// Register drafter
	if err := container.Provide(func(
		cfg *config.Config,
		llm core.LLMClient,
		logger *zap.Logger,
		tp *utils.TextProcessor,
	) *core.ResponseDrafter {
		gen := cfg.GetDrafter()
		return core.NewResponseDrafter(llm, logger.Named("drafter"), tp, gen.Temperature, gen.MaxTokens, cfg.GetMaxBodySize())
	}); err != nil {
		return err
	}

	return nil
}
