package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Clock devolve o instante atual. Injetado para permitir avançar o tempo nos testes.
type Clock func() time.Time

// Entry é o estado de uma janela fixa para uma chave (ex: IP do cliente).
//
// Count nunca passa do máximo configurado enquanto a janela é válida:
// ao atingir o máximo, novas requisições na mesma janela são negadas e não contadas.
type Entry struct {
	WindowStart time.Time
	Count       int
}

// Expired informa se a janela da entrada já terminou em `now`.
func (e Entry) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(e.WindowStart) > window
}

// LimiterStore decide e consome uma vaga por chave numa única operação.
// A implementação pode manter cache, TTL, etc.
type LimiterStore interface {
	CheckAndConsume(Key) Decision
}

type Decision struct {
	Allowed bool
	// Remaining é quantas requisições ainda cabem na janela atual.
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
