package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicesite/contact/domain"
	"voicesite/metrics"
)

// Notifications é a parte do Dispatcher que o Service usa; trocada por fake nos testes.
type Notifications interface {
	Dispatch(ctx context.Context, n domain.Notification) Report
}

// Outcome é o resultado de uma submissão aceita.
type Outcome struct {
	ReferenceID string
	// Discarded é true quando o honeypot foi preenchido: resposta de sucesso, sem envio.
	Discarded bool
	Report    Report
}

type Service struct {
	Notifications Notifications
	To            string
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	NewID         func() string
}

// Submit processa uma submissão já admitida pelo rate limit.
//
// Ordem: honeypot, campos obrigatórios, formato do e-mail, destino configurado, envio.
// Erros devolvidos: *domain.ValidationError ou domain.ErrNotConfigured.
// Depois da validação a resposta é sempre sucesso, com ou sem entrega.
func (s Service) Submit(ctx context.Context, sub domain.Submission) (Outcome, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if sub.IsBot() {
		s.Metrics.IncrementSubmissions("honeypot")
		log.Debug("contact honeypot triggered, discarding submission")
		return Outcome{Discarded: true}, nil
	}

	if err := sub.Validate(); err != nil {
		s.Metrics.IncrementSubmissions("invalid")
		return Outcome{}, err
	}

	if s.To == "" {
		s.Metrics.IncrementSubmissions("misconfigured")
		log.Error("CONTACT_TO_EMAIL environment variable not set")
		return Outcome{}, domain.ErrNotConfigured
	}

	id := s.newID()
	n := domain.Notification{
		ReferenceID: id,
		To:          s.To,
		Submission:  sub.Normalized(),
	}

	var rep Report
	if s.Notifications != nil {
		rep = s.Notifications.Dispatch(ctx, n)
	}
	s.Metrics.IncrementSubmissions("accepted")
	return Outcome{ReferenceID: id, Report: rep}, nil
}

func (s Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
