// Package contact é o adaptador HTTP do formulário de contato (POST /api/contact).
//
// Handler decodifica o corpo (JSON ou form-urlencoded), chama o caso de uso
// e traduz o resultado para respostas JSON:
//
//	200 {"success":true,"message":"..."}  aceito (inclusive honeypot)
//	400 {"error":"..."}                   corpo inválido ou falha de validação
//	500 {"error":"..."}                   destino não configurado ou pânico
//
// A admissão (429) fica no middleware de rate limit, montado antes deste handler.
package contact
