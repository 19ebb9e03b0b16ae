package ratelimit

import (
	"net/http"
	"time"

	"voicesite/middleware/ratelimit/application"
	"voicesite/middleware/ratelimit/infra"
)

// BusyMessage é o texto devolvido quando não há vaga para processar a submissão.
const BusyMessage = "The contact form is busy right now. Please try again in a moment."

// ConcurrencyOptions limita quantas submissões de POST /api/contact são
// processadas ao mesmo tempo (entrega de e-mail incluída). Max <= 0 desliga.
type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware fica atrás do limitador por IP na rota de contato:
// quem passa da janela ainda precisa de uma vaga livre, senão recebe
// RejectStatus com BusyMessage.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				writeJSONError(w, opts.RejectStatus, BusyMessage)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
