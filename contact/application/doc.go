// Package application contém os casos de uso do formulário de contato:
// Service.Submit (honeypot, validação, configuração, envio) e o Dispatcher,
// que percorre a cadeia de provedores até um entregar.
//
// Não conhece net/http. Falhas de entrega nunca sobem para quem chamou:
// são logadas por tentativa e decidem o fallback.
package application
