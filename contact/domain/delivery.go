package domain

import "context"

type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryResult é o resultado de uma tentativa de envio por um provedor.
// Não é persistido; serve só para decidir o fallback.
type DeliveryResult struct {
	Provider string
	Status   DeliveryStatus
	Err      error
}

func Sent(provider string) DeliveryResult {
	return DeliveryResult{Provider: provider, Status: StatusSent}
}

func Failed(provider string, err error) DeliveryResult {
	return DeliveryResult{Provider: provider, Status: StatusFailed, Err: err}
}

func (r DeliveryResult) OK() bool { return r.Status == StatusSent }

// Notification é o que cada provedor recebe: a submissão validada e o destino.
type Notification struct {
	ReferenceID string
	To          string
	Submission  Submission
}

// Notifier é um provedor de entrega (API transacional, SMTP, log).
// Send nunca entra em pânico por falha de rede: devolve Failed com o erro.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) DeliveryResult
}
