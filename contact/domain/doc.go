// Package domain define a submissão do formulário de contato, suas regras de
// validação e o contrato dos provedores de notificação (Notifier).
//
// Não depende de net/http nem de provedores concretos.
package domain
