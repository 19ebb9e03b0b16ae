package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão tomada para uma chave.
//
// Method/Path são strings genéricas; o middleware HTTP preenche com a rota
// do formulário de contato.
//
// Cuidado com cardinalidade: Key é o endereço do cliente e não deve virar
// label de métrica.
type StatsEvent struct {
	Key       Key
	Allowed   bool
	Remaining int

	Method string
	Path   string

	At time.Time
}

// StatsStore é o destino das estatísticas de admissão (memória, Redis, Prometheus).
// O middleware trata erro como best-effort (não derruba o request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
