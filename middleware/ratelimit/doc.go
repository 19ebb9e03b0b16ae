// Package ratelimit fornece adapters HTTP (net/http) para a admissão do
// formulário de contato e para o limite de submissões simultâneas.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa em memória, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo em POST /api/contact:
//
//  1. Extrai a chave do cliente (header/XFF/RemoteAddr)
//  2. Chama a camada application para obter a decisão (janela fixa, padrão 5 por 60s)
//  3. Se bloqueado, responde 429 com {"error": ...} e Retry-After
//  4. Se permitido, guarda a chave no contexto e chama o handler de contato
//
// O binário cmd/server controla o comportamento por variáveis de ambiente
// como RATE_MAX, RATE_WINDOW, RATE_CLEANUP_EVERY e CONTACT_CONCURRENCY_MAX.
package ratelimit
