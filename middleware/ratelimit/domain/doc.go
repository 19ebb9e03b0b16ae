// Package domain define contratos e tipos de domínio para rate limit e concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
//
// O limite de admissão é uma janela fixa por chave (Entry); o contrato
// LimiterStore decide e consome numa única operação atômica para quem chama.
package domain
