// Package http provides the web server for the entry forms: routing,
// template rendering, and the submission endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"gagyebu/internal/middleware/ratelimit"
	"gagyebu/internal/middleware/security"
	"gagyebu/internal/middleware/trace"
	"gagyebu/internal/services"
	appweb "gagyebu/web"
)

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.EntryService
	limiter   *ratelimit.Limiter
	sanitizer *security.Sanitizer

	shutdownOnce sync.Once
}

// Options tunes server behavior.
type Options struct {
	RequestsPerMinute int
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc *services.EntryService, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:       svc,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		sanitizer: security.NewSanitizer(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/form1", s.handleTransactionForm)
	mux.HandleFunc("/form2", s.handleRecurringForm)
	mux.HandleFunc("/entries", s.withRateLimit(s.handleCreateEntry))
	mux.HandleFunc("/recurring", s.withRateLimit(s.handleCreateRecurring))
	// UI partials
	mux.HandleFunc("/ui/payment-options", s.handlePaymentOptions)

	traceMw := trace.NewMiddleware(trace.ExtractClientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: traceMw.Middleware(security.Headers(mux)),
	}

	return s
}

// withRateLimit throttles submissions per client address.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := trace.ExtractClientIP(r)
		if r.Method == http.MethodPost && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex redirects the root to the transaction form and renders the
// not-found view for any unknown path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		http.Redirect(w, r, "/form1", http.StatusFound)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	if s.templates == nil {
		_, _ = w.Write([]byte("page not found"))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "not_found.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Not-found template execution failed", "error", err)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
