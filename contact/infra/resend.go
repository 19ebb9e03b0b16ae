package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"voicesite/contact/domain"
)

const (
	DefaultResendBaseURL = "https://api.resend.com"
	DefaultResendFrom    = "HalloweenVoice <onboarding@resend.dev>"
)

// ErrResendNotConfigured indica que não há chave de API.
var ErrResendNotConfigured = errors.New("resend: not configured")

// ResendNotifier entrega pelo SDK oficial da Resend.
type ResendNotifier struct {
	apiKey     string
	baseURL    string
	from       string
	httpClient *http.Client
}

type ResendOption func(*ResendNotifier)

// WithResendBaseURL troca o endpoint da API (usado por testes e proxies).
func WithResendBaseURL(u string) ResendOption {
	return func(r *ResendNotifier) {
		if u != "" {
			r.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithResendFrom(from string) ResendOption {
	return func(r *ResendNotifier) {
		if from != "" {
			r.from = from
		}
	}
}

func WithResendHTTPClient(c *http.Client) ResendOption {
	return func(r *ResendNotifier) {
		if c != nil {
			r.httpClient = c
		}
	}
}

func NewResendNotifier(apiKey string, opts ...ResendOption) *ResendNotifier {
	r := &ResendNotifier{
		apiKey:     apiKey,
		baseURL:    DefaultResendBaseURL,
		from:       DefaultResendFrom,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ResendNotifier) Name() string { return "resend" }

func (r *ResendNotifier) Send(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	if err := r.send(ctx, RenderEmail(r.from, n)); err != nil {
		return domain.Failed(r.Name(), err)
	}
	return domain.Sent(r.Name())
}

// client monta o cliente do SDK. O SDK resolve "emails" relativo à base,
// então a base precisa terminar em "/".
func (r *ResendNotifier) client() (*resend.Client, error) {
	base, err := url.Parse(r.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("resend: base url: %w", err)
	}
	c := resend.NewCustomClient(r.httpClient, r.apiKey)
	c.BaseURL = base
	return c, nil
}

func (r *ResendNotifier) send(ctx context.Context, e Email) error {
	if r.apiKey == "" {
		return ErrResendNotConfigured
	}
	c, err := r.client()
	if err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    e.From,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
		ReplyTo: e.ReplyTo,
	}
	if _, err := c.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send: %w", err)
	}
	return nil
}
