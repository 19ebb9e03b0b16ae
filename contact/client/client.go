// Package client é o lado de quem envia o formulário: validação local, POST JSON
// para /api/contact e um Renderer que recebe o estado (ocupado, status).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	MsgRequired = "Please fill in all required fields."
	MsgSending  = "Sending..."
	MsgNetwork  = "Something went wrong. Please try again or email us directly."
)

type StatusKind string

const (
	StatusSending StatusKind = "sending"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

type Status struct {
	Kind StatusKind
	Text string
}

// Renderer é a superfície de UI: SetBusy liga/desliga o botão de envio.
type Renderer interface {
	SetBusy(busy bool)
	Render(s Status)
}

// Form são os valores lidos do formulário. Website é o honeypot e segue cru.
type Form struct {
	Name    string
	Email   string
	Company string
	Message string
	Website string
}

type payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
	Website string `json:"website"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type Client struct {
	Endpoint string
	HTTP     *http.Client
}

func New(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Submit valida, envia e renderiza. Devolve o status final mostrado.
// Com campo obrigatório vazio nenhuma requisição é feita.
func (c *Client) Submit(ctx context.Context, f Form, r Renderer) Status {
	p := payload{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Company: strings.TrimSpace(f.Company),
		Message: strings.TrimSpace(f.Message),
		Website: f.Website,
	}
	if p.Name == "" || p.Email == "" || p.Message == "" {
		st := Status{Kind: StatusError, Text: MsgRequired}
		r.Render(st)
		return st
	}

	r.SetBusy(true)
	defer r.SetBusy(false)
	r.Render(Status{Kind: StatusSending, Text: MsgSending})

	st, err := c.post(ctx, p)
	if err != nil {
		st = Status{Kind: StatusError, Text: MsgNetwork}
	}
	r.Render(st)
	return st
}

func (c *Client) post(ctx context.Context, p payload) (Status, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Status{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return Status{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Success {
		return Status{Kind: StatusSuccess, Text: out.Message}, nil
	}
	if out.Error == "" {
		out.Error = MsgNetwork
	}
	return Status{Kind: StatusError, Text: out.Error}, nil
}

// WriterRenderer escreve cada status em uma linha; serve para a CLI.
type WriterRenderer struct {
	W    io.Writer
	Busy bool
}

func (w *WriterRenderer) SetBusy(busy bool) { w.Busy = busy }

func (w *WriterRenderer) Render(s Status) {
	fmt.Fprintf(w.W, "[%s] %s\n", s.Kind, s.Text)
}
