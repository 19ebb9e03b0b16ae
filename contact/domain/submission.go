package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Mensagens devolvidas ao visitante.
const (
	MsgMissingFields = "Please fill in all required fields."
	MsgInvalidEmail  = "Please provide a valid email address."
	MsgNotConfigured = "Contact form is not configured yet. Please try again later."
	MsgAccepted      = "Thank you for your enquiry! We'll be in touch soon."
	MsgUnexpected    = "Something went wrong. Please try again."
)

// ErrNotConfigured indica que não há endereço de destino configurado.
var ErrNotConfigured = errors.New("contact: destination address not configured")

// Submission é o payload transiente de um envio do formulário.
// Website é o honeypot: usuários reais nunca preenchem.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
	Website string `json:"website"`
}

// Normalized devolve a submissão com espaços removidos das pontas.
// O honeypot fica como veio.
func (s Submission) Normalized() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Company: strings.TrimSpace(s.Company),
		Message: strings.TrimSpace(s.Message),
		Website: s.Website,
	}
}

// IsBot informa se o honeypot foi preenchido.
func (s Submission) IsBot() bool { return s.Website != "" }

// ValidationError é um erro de campo obrigatório ou malformado.
type ValidationError struct {
	Reason  string // "missing_fields" | "invalid_email"
	Message string // texto para o visitante
}

func (e *ValidationError) Error() string { return "contact: " + e.Reason }

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail confere o formato local@domínio.tld.
func ValidEmail(email string) bool { return emailShape.MatchString(email) }

// Validate confere campos obrigatórios (após trim) e o formato do e-mail.
// Company é opcional.
func (s Submission) Validate() error {
	n := s.Normalized()
	if n.Name == "" || n.Email == "" || n.Message == "" {
		return &ValidationError{Reason: "missing_fields", Message: MsgMissingFields}
	}
	if !ValidEmail(n.Email) {
		return &ValidationError{Reason: "invalid_email", Message: MsgInvalidEmail}
	}
	return nil
}
