package infra

import (
	"context"

	"voicesite/metrics"
	"voicesite/middleware/ratelimit/domain"
)

// PrometheusStatsStore conta decisões sem usar a chave como label.
type PrometheusStatsStore struct {
	m *metrics.Metrics
}

func NewPrometheusStatsStore(m *metrics.Metrics) *PrometheusStatsStore {
	return &PrometheusStatsStore{m: m}
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.m.IncrementRateLimitDecision(ev.Allowed)
	return nil
}

// MultiStats repassa cada evento para todos os stores e devolve o primeiro erro.
type MultiStats []domain.StatsStore

func (ms MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
