package infra

import (
	"context"

	"go.uber.org/zap"

	"voicesite/contact/domain"
)

// LogNotifier grava a submissão inteira no log para acompanhamento manual.
// Sempre "entrega": é o último elo da cadeia.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Send(_ context.Context, n domain.Notification) domain.DeliveryResult {
	s := n.Submission
	company := s.Company
	if company == "" {
		company = "N/A"
	}
	l.logger.Warn("contact submission not delivered, recorded for manual follow-up",
		zap.String("reference_id", n.ReferenceID),
		zap.String("to", n.To),
		zap.String("name", s.Name),
		zap.String("email", s.Email),
		zap.String("company", company),
		zap.String("message", s.Message),
	)
	return domain.Sent(l.Name())
}
