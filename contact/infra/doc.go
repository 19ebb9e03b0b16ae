// Package infra contém os provedores de entrega (domain.Notifier) do formulário de contato.
//
//   - ResendNotifier: API transacional da Resend via HTTP puro (POST /emails)
//   - SMTPNotifier: relay SMTP com emersion/go-smtp; TLS implícito ou STARTTLS, AUTH PLAIN
//   - LogNotifier: registro completo no log para acompanhamento manual (fallback)
//   - Throttled: limita a vazão de um provedor sem bloquear a requisição
//
// Todos devolvem DeliveryResult; nenhum deles devolve erro para quem chamou.
package infra
