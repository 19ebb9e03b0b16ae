package application

import (
	"time"

	"voicesite/middleware/ratelimit/domain"
)

// Service concentra a regra de admissão do formulário de contato.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// RetryAfter é o fallback quando o store não informa quanto falta na janela.
type Service struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	dec := s.Store.CheckAndConsume(key)
	if dec.Allowed {
		dec.RetryAfter = 0
		return dec
	}
	if dec.RetryAfter <= 0 {
		dec.RetryAfter = s.RetryAfter
	}
	return dec
}
