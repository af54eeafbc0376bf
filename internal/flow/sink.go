package flow

import (
	"context"

	"github.com/kapu/delphi-enrich-web/internal/domain"
	"go.uber.org/zap"
)

// ConfirmationSink receives profiles the user confirmed. Persisting them is up
// to the implementation; the flow only hands them over.
type ConfirmationSink interface {
	ProfileConfirmed(ctx context.Context, name string, profile *domain.Profile) error
}

// LogSink records confirmations in the log only.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) ProfileConfirmed(_ context.Context, name string, profile *domain.Profile) error {
	title, _ := profile.Title()
	org, _ := profile.Organization()
	fullName, ok := profile.FullName()
	if !ok {
		fullName = name
	}

	s.logger.Info("Profile confirmed (not persisted)",
		zap.String("query_name", name),
		zap.String("full_name", fullName),
		zap.String("title", title),
		zap.String("organization", org),
	)
	return nil
}
