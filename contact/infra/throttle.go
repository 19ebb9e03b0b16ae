package infra

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"voicesite/contact/domain"
)

// ErrThrottled indica que o provedor estourou a própria cota de envios.
var ErrThrottled = errors.New("contact: provider throttled")

// Throttled limita quantos envios um provedor aceita por minuto.
// Não espera por token: sem token a tentativa falha e a cadeia segue.
type Throttled struct {
	next    domain.Notifier
	limiter *rate.Limiter
}

// NewThrottled com perMinute <= 0 não limita.
func NewThrottled(next domain.Notifier, perMinute, burst int) *Throttled {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Name() string { return t.next.Name() }

func (t *Throttled) Send(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	if !t.limiter.Allow() {
		return domain.Failed(t.Name(), ErrThrottled)
	}
	return t.next.Send(ctx, n)
}
