package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/sms-risk-detector/internal/core"
	"go.uber.org/zap"
)

// ErrBlankMessage is returned when there is nothing to score
var ErrBlankMessage = errors.New("please enter a message")

// CliFilter implements a command-line interface for risk scoring
type CliFilter struct {
	service *core.RiskService
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCliFilter creates a new CLI filter writing its report to out
func NewCliFilter(service *core.RiskService, logger *zap.Logger, out io.Writer, verbose bool) (*CliFilter, error) {
	if service == nil {
		return nil, errors.New("risk service is required")
	}
	return &CliFilter{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}, nil
}

// ProcessMessage scores a single text message and prints the verdict
func (f *CliFilter) ProcessMessage(ctx context.Context, text string) (*core.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankMessage
	}

	fmt.Fprintf(f.out, "\n=== Message ===\n")
	fmt.Fprintf(f.out, "Length: %d bytes\n", len(text))
	if f.verbose {
		fmt.Fprintf(f.out, "\n%s\n", preview(text))
	}

	start := time.Now()
	result, err := f.service.AnalyzeMessage(ctx, text)
	if err != nil {
		f.logger.Error("Failed to analyze message", zap.Error(err))
		return nil, err
	}
	f.printResult(result, time.Since(start))
	return result, nil
}

// ProcessEmail scores an email and prints the verdict
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))
	if f.verbose {
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview(email.Body))
	}

	start := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	f.printResult(result, time.Since(start))
	return result, nil
}

func (f *CliFilter) printResult(result *core.AnalysisResult, elapsed time.Duration) {
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Risk level: %s\n", result.Verdict.Tier)
	fmt.Fprintf(f.out, "Spam probability: %.2f\n", result.Verdict.Probability)
	fmt.Fprintf(f.out, "Cleaned text: %s\n", result.Verdict.CleanedText)
	fmt.Fprintf(f.out, "Source: %s\n", result.Source)
	if f.verbose {
		fmt.Fprintf(f.out, "Model bundle: %s\n", result.BundleID)
		fmt.Fprintf(f.out, "Processing time: %v\n", elapsed)
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > 500 {
		return string(runes[:500]) + "..."
	}
	return text
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
