package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"voicesite/contact/domain"
	"voicesite/metrics"
)

// Report resume o que aconteceu com uma notificação.
type Report struct {
	Attempts  []domain.DeliveryResult
	Delivered bool
	Provider  string
	// Recorded indica que nenhum provedor entregou e o registro foi para o log.
	Recorded bool
}

// Dispatcher tenta cada Notifier em ordem, no máximo uma vez cada, e para no primeiro sucesso.
// Se todos falharem (ou não houver nenhum), chama Fallback uma única vez.
type Dispatcher struct {
	Notifiers      []domain.Notifier
	Fallback       domain.Notifier
	AttemptTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

func (d Dispatcher) Dispatch(ctx context.Context, n domain.Notification) Report {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("reference_id", n.ReferenceID))

	var rep Report
	for _, nt := range d.Notifiers {
		res := d.attempt(ctx, nt, n)
		rep.Attempts = append(rep.Attempts, res)
		if res.OK() {
			rep.Delivered = true
			rep.Provider = res.Provider
			log.Info("contact notification delivered", zap.String("provider", res.Provider))
			return rep
		}
		log.Warn("contact notification failed", zap.String("provider", res.Provider), zap.Error(res.Err))
	}

	if d.Fallback != nil {
		res := d.Fallback.Send(ctx, n)
		rep.Attempts = append(rep.Attempts, res)
		rep.Recorded = res.OK()
		d.Metrics.IncrementFallbackRecords()
	}
	return rep
}

func (d Dispatcher) attempt(ctx context.Context, nt domain.Notifier, n domain.Notification) domain.DeliveryResult {
	if d.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	res := nt.Send(ctx, n)
	if res.Provider == "" {
		res.Provider = nt.Name()
	}
	d.Metrics.ObserveDelivery(res.Provider, string(res.Status), time.Since(start).Seconds())
	return res
}
