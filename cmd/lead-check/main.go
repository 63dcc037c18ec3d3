package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/llm-lead-responder/internal/adapters/eml"
	"github.com/mikey/llm-lead-responder/internal/config"
	"github.com/mikey/llm-lead-responder/internal/core"
	"github.com/mikey/llm-lead-responder/internal/di"
	"github.com/mikey/llm-lead-responder/internal/senders"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	cfg *config.Config,
	logger *zap.Logger,
	llmClient core.LLMClient,
	classifier *core.LeadClassifier,
	drafter *core.ResponseDrafter,
	internal *senders.DomainChecker,
) error {
	defer logger.Sync()

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close LLM client", zap.Error(err))
			}
		}()
	}

	// Read email from file or stdin
	var emailReader io.Reader
	id := "stdin"
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		emailReader = file
		id = flags.InputFile
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	raw, err := eml.Parse(emailReader, id)
	if err != nil {
		return err
	}
	msg := core.Decode(raw)

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", msg.From)
	fmt.Printf("To: %s\n", msg.To)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Body length: %d bytes\n", len(msg.Body))
	fmt.Printf("\n")

	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetLLM().Provider)
	fmt.Printf("Lead threshold: %.2f\n", core.LeadThreshold)

	ctx := context.Background()
	startTime := time.Now()

	var verdict core.Verdict
	if internal.Matches(msg.From) {
		verdict = core.NewVerdict(false, 1, "internal sender", nil)
	} else {
		verdict = classifier.Classify(ctx, msg.Subject, msg.Body)
	}
	isLead := verdict.IsEffectiveLead()

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is lead: %t\n", isLead)
	fmt.Printf("Label: %s\n", verdict.Label())
	fmt.Printf("Confidence: %.4f\n", verdict.Confidence)
	fmt.Printf("Reason: %s\n", verdict.Reason)
	if len(verdict.Keywords) > 0 {
		fmt.Printf("Keywords: %s\n", strings.Join(verdict.Keywords, ", "))
	}

	if !flags.NoDraft {
		reply := drafter.Draft(ctx, msg, isLead)
		fmt.Printf("\n=== Draft Reply ===\n")
		fmt.Printf("Subject: Re: %s\n\n%s\n", msg.Subject, reply)
	}

	fmt.Printf("\nProcessing time: %v\n", time.Since(startTime))
	return nil
}
