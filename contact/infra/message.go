package infra

import (
	"html"
	"strings"

	"voicesite/contact/domain"
)

// Email é a mensagem já renderizada, independente do provedor.
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

const notProvided = "Not provided"

// RenderEmail monta o e-mail de aviso para o dono do site.
// Todo texto do visitante é escapado no corpo HTML.
func RenderEmail(from string, n domain.Notification) Email {
	s := n.Submission
	company := s.Company
	if company == "" {
		company = notProvided
	}

	var h strings.Builder
	h.WriteString("<h2>New Enquiry from HalloweenVoice.co.uk</h2>\n")
	h.WriteString("<p><strong>Name:</strong> " + html.EscapeString(s.Name) + "</p>\n")
	h.WriteString("<p><strong>Email:</strong> " + html.EscapeString(s.Email) + "</p>\n")
	h.WriteString("<p><strong>Company:</strong> " + html.EscapeString(company) + "</p>\n")
	h.WriteString("<p><strong>Message:</strong></p>\n")
	h.WriteString("<p>" + strings.ReplaceAll(html.EscapeString(s.Message), "\n", "<br>") + "</p>\n")

	var t strings.Builder
	t.WriteString("New Enquiry from HalloweenVoice.co.uk\n\n")
	t.WriteString("Name: " + s.Name + "\n")
	t.WriteString("Email: " + s.Email + "\n")
	t.WriteString("Company: " + company + "\n\n")
	t.WriteString("Message:\n" + s.Message + "\n")

	return Email{
		From:    from,
		To:      n.To,
		ReplyTo: s.Email,
		Subject: "New Enquiry from " + s.Name,
		HTML:    h.String(),
		Text:    t.String(),
	}
}
