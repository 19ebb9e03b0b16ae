package infra

import (
	"context"
	"sync"

	"voicesite/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

// Snapshot é uma cópia consistente dos contadores, usada no log de desligamento.
type Snapshot struct {
	Total   Counters
	ByRoute map[string]Counters
	ByKey   map[string]Counters
}

// MemoryStatsStore guarda totais de admissão do processo atual.
//
// Não faz expiração; com trackKeys=true cresce com o número de clientes.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = bump(s.total, ev.Allowed)
	s.byRoute[route] = bump(s.byRoute[route], ev.Allowed)
	if s.trackKeys {
		key := string(ev.Key)
		s.byKey[key] = bump(s.byKey[key], ev.Allowed)
	}
	return nil
}

func bump(c Counters, allowed bool) Counters {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
	return c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Total:   s.total,
		ByRoute: copyCounters(s.byRoute),
		ByKey:   copyCounters(s.byKey),
	}
}

func copyCounters(in map[string]Counters) map[string]Counters {
	out := make(map[string]Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
