package application

import (
	"context"
	"time"

	"voicesite/middleware/ratelimit/domain"
)

// ConcurrencyService segura uma vaga do pool enquanto uma submissão de contato
// é processada (validação + envio pelos provedores), sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Sem pool, sempre libera.
// - Se `AcquireTimeout <= 0`, espera até o ctx do request cancelar.
// - Se `AcquireTimeout > 0`, espera no máximo o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}

// InUse devolve quantas submissões estão em andamento.
func (s ConcurrencyService) InUse() int {
	if s.Pool == nil {
		return 0
	}
	return s.Pool.InUse()
}
