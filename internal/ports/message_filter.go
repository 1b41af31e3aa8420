package ports

import (
	"context"

	"github.com/mikey/sms-risk-detector/internal/core"
)

// MessageFilter is a front end that feeds messages into the risk service
type MessageFilter interface {
	// ProcessEmail scores an email and returns the analysis result
	ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error)

	// Start starts the filter
	Start() error

	// Stop stops the filter
	Stop() error
}
