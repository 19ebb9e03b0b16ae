package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"voicesite/contact/client"
)

// Envia uma submissão do formulário pela linha de comando, como o navegador faria:
//
//	contact-submit --name Ana --email ana@example.com --message "Olá"
func main() {
	endpoint := pflag.StringP("endpoint", "e", "http://localhost:5000/api/contact", "contact endpoint URL")
	name := pflag.StringP("name", "n", "", "visitor name")
	email := pflag.String("email", "", "visitor email")
	company := pflag.StringP("company", "c", "", "company (optional)")
	message := pflag.StringP("message", "m", "", "message body")
	website := pflag.String("website", "", "honeypot field value (leave empty)")
	timeout := pflag.DurationP("timeout", "t", 30*time.Second, "request timeout")
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	c := client.New(*endpoint)
	r := &client.WriterRenderer{W: os.Stdout}
	st := c.Submit(ctx, client.Form{
		Name:    *name,
		Email:   *email,
		Company: *company,
		Message: *message,
		Website: *website,
	}, r)

	if st.Kind != client.StatusSuccess {
		fmt.Fprintln(os.Stderr, "submission not accepted")
		os.Exit(1)
	}
}
