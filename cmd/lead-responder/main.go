package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/mikey/llm-lead-responder/internal/di"
	"github.com/mikey/llm-lead-responder/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	runners []ports.Runner,
	llmClient core.LLMClient,
	ledger core.Ledger,
) error {
	defer logger.Sync()

	started := make([]ports.Runner, 0, len(runners))
	for _, r := range runners {
		if err := r.Start(); err != nil {
			logger.Error("Failed to start component", zap.Error(err))
			stopAll(logger, started)
			return err
		}
		started = append(started, r)
	}

	logger.Info("Lead responder started")

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	stopAll(logger, started)

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	// Stop the ledger if needed
	if stopper, ok := ledger.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}

// stopAll stops runners in reverse start order
func stopAll(logger *zap.Logger, runners []ports.Runner) {
	for i := len(runners) - 1; i >= 0; i-- {
		if err := runners[i].Stop(); err != nil {
			logger.Error("Failed to stop component", zap.Error(err))
		}
	}
}
