package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"voicesite/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava as decisões de admissão no Redis.
//
// É só estatística: a decisão em si continua no Store em memória.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	// trackKeys mantém um sorted set com as chaves mais negadas.
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "contact:ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping é usado pelo readiness check.
func (s *RedisStatsStore) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)

	if s.bucket == "minute" {
		bucketKey := s.minuteKey(at)
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
	if routeField != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", routeField+":"+field, 1)
	}

	if s.trackKeys && !ev.Allowed {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			deniedKey := s.prefix + ":denied"
			pipe.ZIncrBy(ctx, deniedKey, 1, k)
			if s.ttl > 0 {
				pipe.Expire(ctx, deniedKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals lê os contadores cumulativos. Sem cliente devolve zero.
func (s *RedisStatsStore) Totals(ctx context.Context) (Counters, error) {
	if s == nil || s.rdb == nil {
		return Counters{}, nil
	}
	vals, err := s.rdb.HGetAll(ctx, s.totalKey()).Result()
	if err != nil {
		return Counters{}, err
	}
	allowed, _ := strconv.ParseInt(vals["allowed"], 10, 64)
	denied, _ := strconv.ParseInt(vals["denied"], 10, 64)
	return Counters{Allowed: allowed, Denied: denied}, nil
}

func (s *RedisStatsStore) totalKey() string { return s.prefix + ":total" }

func (s *RedisStatsStore) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}
