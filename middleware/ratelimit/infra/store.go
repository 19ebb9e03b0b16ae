package infra

import (
	"sync"
	"time"

	"voicesite/middleware/ratelimit/domain"
)

// Store é uma implementação de infra de janela fixa por chave, em memória,
// com limpeza periódica das janelas vencidas.
//
// O estado é local ao processo: reiniciar zera os limites e várias instâncias
// não compartilham contagem.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*domain.Entry
	max          int
	window       time.Duration
	cleanupEvery time.Duration
	now          domain.Clock
	onCleanup    func(removed, remaining int)
}

type StoreOption func(*Store)

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClock troca o relógio (padrão time.Now).
func WithClock(c domain.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.now = c
		}
	}
}

// WithCleanupHook recebe o resultado de cada limpeza (log/métricas).
func WithCleanupHook(fn func(removed, remaining int)) StoreOption {
	return func(s *Store) { s.onCleanup = fn }
}

// NewStore cria o store com `max` requisições por `window`.
func NewStore(max int, window time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*domain.Entry),
		max:          max,
		window:       window,
		cleanupEvery: 5 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Max() int                    { return s.max }
func (s *Store) Window() time.Duration       { return s.window }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// CheckAndConsume implementa domain.LimiterStore.
//
// Leitura e atualização da entrada acontecem sob o mesmo lock usado pela limpeza.
func (s *Store) CheckAndConsume(key domain.Key) domain.Decision {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[string(key)]
	if !ok || ent.Expired(now, s.window) {
		s.entries[string(key)] = &domain.Entry{WindowStart: now, Count: 1}
		return domain.Decision{Allowed: true, Remaining: s.max - 1}
	}

	if ent.Count >= s.max {
		return domain.Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: ent.WindowStart.Add(s.window).Sub(now),
		}
	}

	ent.Count++
	return domain.Decision{Allowed: true, Remaining: s.max - ent.Count}
}

// Lookup devolve uma cópia da entrada da chave, se existir.
func (s *Store) Lookup(key domain.Key) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[string(key)]
	if !ok {
		return domain.Entry{}, false
	}
	return *ent, true
}

// Len devolve quantas chaves estão em memória.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove as entradas cuja janela já terminou e devolve quantas saíram.
func (s *Store) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for k, ent := range s.entries {
		if ent.Expired(now, s.window) {
			delete(s.entries, k)
			removed++
		}
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if s.onCleanup != nil {
		s.onCleanup(removed, remaining)
	}
	return removed
}

// StartJanitor inicia uma goroutine que limpa janelas vencidas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
