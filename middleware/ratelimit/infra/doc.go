// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: janela fixa por chave em memória, com relógio injetável e janitor
//   - ChanPool: semáforo simples para limitar submissões simultâneas
//   - MemoryStatsStore / RedisStatsStore / PrometheusStatsStore: destinos das
//     estatísticas de admissão; MultiStats distribui um evento para vários
package infra
