package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
)

// Imita o endpoint /emails da Resend para testar a cadeia de entrega na mão:
//
//	go run ./teste-validacao/provedor-falso
//	RESEND_API_KEY=qualquer RESEND_BASE_URL=http://localhost:8089 go run ./cmd/server
//
// FAIL=true faz toda chamada devolver 500, para ver o fallback para SMTP ou log.
func main() {
	fail := os.Getenv("FAIL") == "true"
	addr := ":8089"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	var seq atomic.Int64
	http.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			From    string   `json:"from"`
			To      []string `json:"to"`
			Subject string   `json:"subject"`
			ReplyTo string   `json:"reply_to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"name":"validation_error","message":"invalid json"}`))
			return
		}
		fmt.Printf("Log: e-mail recebido auth=%q from=%q to=%v subject=%q reply_to=%q\n",
			r.Header.Get("Authorization"), body.From, body.To, body.Subject, body.ReplyTo)

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"name":"internal_server_error","message":"provedor falso em modo FAIL"}`))
			return
		}
		fmt.Fprintf(w, `{"id":"fake-%d"}`, seq.Add(1))
	})

	fmt.Printf("Provedor falso rodando em http://localhost%s (FAIL=%v)\n", addr, fail)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
