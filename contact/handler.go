package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"voicesite/contact/application"
	"voicesite/contact/domain"
	"voicesite/logging"
	"voicesite/middleware/ratelimit"
)

// MsgInvalidBody é devolvido quando o corpo não decodifica.
const MsgInvalidBody = "Invalid request body."

const DefaultMaxBodyBytes int64 = 64 << 10

// Submitter é o caso de uso; application.Service satisfaz.
type Submitter interface {
	Submit(ctx context.Context, sub domain.Submission) (application.Outcome, error)
}

type HandlerOptions struct {
	Service      Submitter
	Logger       *zap.Logger
	MaxBodyBytes int64
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func Handler(opts HandlerOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	log := opts.Logger

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := "unknown"
		if k, ok := ratelimit.KeyFromContext(r.Context()); ok {
			client = k
		}
		reqLog := log.With(zap.String("client", logging.AnonymizeIP(client)))

		defer func() {
			if rec := recover(); rec != nil {
				reqLog.Error("contact handler panic",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.MsgUnexpected})
			}
		}()

		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		sub, err := decodeSubmission(r)
		if err != nil {
			reqLog.Info("contact body rejected", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: MsgInvalidBody})
			return
		}

		out, err := opts.Service.Submit(r.Context(), sub)
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			reqLog.Info("contact submission invalid", zap.String("reason", verr.Reason))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
			return
		case errors.Is(err, domain.ErrNotConfigured):
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.MsgNotConfigured})
			return
		case err != nil:
			reqLog.Error("contact submission failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.MsgUnexpected})
			return
		}

		if !out.Discarded {
			reqLog.Info("contact submission accepted",
				zap.String("reference_id", out.ReferenceID),
				zap.Bool("delivered", out.Report.Delivered),
				zap.String("provider", out.Report.Provider),
				zap.Bool("recorded", out.Report.Recorded),
			)
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: domain.MsgAccepted})
	})
}

// decodeSubmission aceita JSON (padrão) e application/x-www-form-urlencoded.
// Corpo vazio vira submissão vazia e cai na validação de campos obrigatórios.
func decodeSubmission(r *http.Request) (domain.Submission, error) {
	var sub domain.Submission

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return sub, err
		}
		sub.Name = r.PostForm.Get("name")
		sub.Email = r.PostForm.Get("email")
		sub.Company = r.PostForm.Get("company")
		sub.Message = r.PostForm.Get("message")
		sub.Website = r.PostForm.Get("website")
		return sub, nil
	}

	var wire submissionJSON
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil && !errors.Is(err, io.EOF) {
		return sub, err
	}
	sub.Name = wire.Name
	sub.Email = wire.Email
	sub.Company = wire.Company
	sub.Message = wire.Message
	sub.Website = honeypotValue(wire.Website)
	return sub, nil
}

// submissionJSON aceita qualquer tipo em "website": bots mandam número,
// booleano ou objeto, e isso não pode virar 400.
type submissionJSON struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Company string          `json:"company"`
	Message string          `json:"message"`
	Website json.RawMessage `json:"website"`
}

// honeypotValue reduz o campo a string. Valores falsos (null, false, 0,
// "") ficam vazios; qualquer outro valor marca a submissão como bot.
func honeypotValue(raw json.RawMessage) string {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return ""
	}
	if v[0] == '"' {
		var str string
		if json.Unmarshal(raw, &str) == nil {
			return str
		}
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
		return ""
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
