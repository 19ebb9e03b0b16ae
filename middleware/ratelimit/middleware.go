package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"voicesite/middleware/ratelimit/application"
	"voicesite/middleware/ratelimit/domain"
)

// TooManyRequestsMessage é o texto padrão devolvido ao cliente bloqueado.
const TooManyRequestsMessage = "Too many requests. Please try again later."

type KeyFunc func(r *http.Request) string

// RejectFunc escreve a resposta de bloqueio. Headers Retry-After/X-RateLimit-* já foram setados.
type RejectFunc func(w http.ResponseWriter, r *http.Request, dec domain.Decision)

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Reject              RejectFunc
}

type windowInfo interface {
	Max() int
	Window() time.Duration
}

type keyCtxKey struct{}

// KeyFromContext devolve a chave (endereço do cliente) resolvida pelo middleware.
func KeyFromContext(ctx context.Context) (string, bool) {
	k, ok := ctx.Value(keyCtxKey{}).(string)
	return k, ok
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// DefaultReject responde {"error": "..."} em JSON.
func DefaultReject(status int) RejectFunc {
	return func(w http.ResponseWriter, _ *http.Request, _ domain.Decision) {
		writeJSONError(w, status, TooManyRequestsMessage)
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Reject == nil {
		opts.Reject = DefaultReject(opts.RejectStatus)
	}

	svc := application.Service{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec := svc.Decide(domain.Key(key))

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				if wi, ok := opts.Store.(windowInfo); ok {
					w.Header().Set("X-RateLimit-Limit", formatInt(wi.Max()))
					w.Header().Set("X-RateLimit-Window", formatInt(int(wi.Window().Seconds())))
				}
			}

			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:       domain.Key(key),
					Allowed:   dec.Allowed,
					Remaining: dec.Remaining,
					Method:    r.Method,
					Path:      r.URL.Path,
					At:        time.Now(),
				})
			}
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(retryAfterSeconds(dec.RetryAfter)))
				opts.Reject(w, r, dec)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), keyCtxKey{}, key)))
		})
	}
}
