// Package site monta o roteador HTTP do site: API de contato, árvore estática,
// catálogo JSON em /data, métricas, health e o fallback de página única.
package site

import (
	"io/fs"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"voicesite/logging"
)

const indexFile = "index.html"

type Options struct {
	Public fs.FS
	Data   fs.FS
	// Contact já vem embrulhado pelos middlewares de concorrência e rate limit.
	Contact http.Handler
	Metrics http.Handler
	Live    http.Handler
	Ready   http.Handler
	Logger  *zap.Logger
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(RequestLogger(opts.Logger))

	if opts.Contact != nil {
		r.Method(http.MethodPost, "/api/contact", opts.Contact)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Live != nil {
		r.Method(http.MethodGet, "/healthz/live", opts.Live)
	}
	if opts.Ready != nil {
		r.Method(http.MethodGet, "/healthz/ready", opts.Ready)
	}

	static := staticHandler(opts.Public)
	if opts.Data != nil {
		r.Handle("/data/*", dataHandler(opts.Data, opts.Public))
	}
	// qualquer outra rota, com qualquer método, cai na árvore estática e depois no index
	r.NotFound(static)
	r.MethodNotAllowed(static)
	return r
}

// SecurityHeaders aplica os headers de segurança comuns a todas as respostas.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger registra uma linha por requisição; o nível segue o status.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", logging.AnonymizeIP(host)),
			}
			switch {
			case status >= 500:
				log.Error("server error", fields...)
			case status >= 400:
				log.Warn("client error", fields...)
			default:
				log.Debug("request", fields...)
			}
		})
	}
}

// resolve devolve o nome de um arquivo regular em fsys para o caminho da URL.
// Diretórios resolvem para o index.html de dentro deles.
func resolve(fsys fs.FS, urlPath string) (string, bool) {
	if fsys == nil {
		return "", false
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = indexFile
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	fi, err := fs.Stat(fsys, name)
	if err != nil {
		return "", false
	}
	if fi.IsDir() {
		name = path.Join(name, indexFile)
		if fi, err = fs.Stat(fsys, name); err != nil || fi.IsDir() {
			return "", false
		}
	}
	return name, true
}

func isRead(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func staticHandler(public fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isRead(r) {
			if name, ok := resolve(public, r.URL.Path); ok {
				w.Header().Set("Cache-Control", "no-cache")
				http.ServeFileFS(w, r, public, name)
				return
			}
		}
		serveIndex(w, r, public)
	}
}

func dataHandler(data, public fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isRead(r) {
			if name, ok := resolve(data, chi.URLParam(r, "*")); ok {
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Content-Type", "application/json")
				http.ServeFileFS(w, r, data, name)
				return
			}
		}
		serveIndex(w, r, public)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request, public fs.FS) {
	if public == nil {
		http.NotFound(w, r)
		return
	}
	if _, err := fs.Stat(public, indexFile); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, serveIndexRequest(r), public, indexFile)
}

// serveIndexRequest evita o redirect de ServeFileFS para caminhos que terminam em /index.html.
func serveIndexRequest(r *http.Request) *http.Request {
	if !strings.HasSuffix(r.URL.Path, "/"+indexFile) {
		return r
	}
	r2 := r.Clone(r.Context())
	r2.URL.Path = "/"
	return r2
}
