// Package application contém os casos de uso (regras de aplicação) para a
// admissão do formulário de contato e o limite de submissões simultâneas.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key) retorna uma Decision (allow/deny + remaining + retry-after).
package application
