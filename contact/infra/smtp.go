package infra

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/textproto"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	"voicesite/contact/domain"
)

const DefaultSMTPPort = 587

// ErrSMTPNotConfigured indica que faltam host ou remetente.
var ErrSMTPNotConfigured = errors.New("smtp: not configured")

// SMTPConfig descreve o relay.
//
// Secure=true usa TLS implícito (porta 465 em geral); caso contrário a conexão
// começa em texto puro e sobe para TLS quando o servidor oferece STARTTLS.
// Username vazio desliga a autenticação.
type SMTPConfig struct {
	Host      string
	Port      int
	Secure    bool
	Username  string
	Password  string
	From      string
	LocalName string
	TLSConfig *tls.Config
}

type SMTPNotifier struct {
	cfg SMTPConfig
	now func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port <= 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPNotifier{cfg: cfg, now: time.Now}
}

func (s *SMTPNotifier) Name() string { return "smtp" }

func (s *SMTPNotifier) Send(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	e := RenderEmail(s.cfg.From, n)
	if err := s.deliver(ctx, e, n.ReferenceID); err != nil {
		return domain.Failed(s.Name(), err)
	}
	return domain.Sent(s.Name())
}

func (s *SMTPNotifier) tlsConfig() *tls.Config {
	if s.cfg.TLSConfig != nil {
		return s.cfg.TLSConfig
	}
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}

func (s *SMTPNotifier) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	d := &net.Dialer{}
	if s.cfg.Secure {
		td := &tls.Dialer{NetDialer: d, Config: s.tlsConfig()}
		return td.DialContext(ctx, "tcp", addr)
	}
	return d.DialContext(ctx, "tcp", addr)
}

func (s *SMTPNotifier) deliver(ctx context.Context, e Email, refID string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return ErrSMTPNotConfigured
	}

	msg, err := buildMIME(e, refID, s.now())
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp: dial: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	// cancelamento do ctx derruba a conexão e destrava qualquer leitura pendente
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c := gosmtp.NewClient(conn)
	defer c.Close()

	if s.cfg.LocalName != "" {
		if err := c.Hello(s.cfg.LocalName); err != nil {
			return fmt.Errorf("smtp: hello: %w", err)
		}
	}
	if !s.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(s.tlsConfig()); err != nil {
				return fmt.Errorf("smtp: starttls: %w", err)
			}
		}
	}
	if s.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := c.SendMail(envelopeAddress(e.From), []string{e.To}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp: quit: %w", err)
	}
	return nil
}

// envelopeAddress extrai o endereço de "Nome <addr>"; se não parsear, usa o valor cru.
func envelopeAddress(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}

// buildMIME monta um multipart/alternative (texto + HTML) em quoted-printable.
func buildMIME(e Email, refID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := func(k, v string) {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	header("From", e.From)
	header("To", e.To)
	if e.ReplyTo != "" {
		header("Reply-To", e.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	header("Date", now.Format(time.RFC1123Z))
	if refID != "" {
		header("Message-ID", "<"+refID+"@voicesite>")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)
	buf.WriteString("\r\n")

	parts := []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", e.Text},
		{"text/html; charset=utf-8", e.HTML},
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", p.ctype)
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
