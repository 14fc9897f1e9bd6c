// Package web serves the storefront's server-rendered pages.
package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/storage"
)

// Server holds the dependencies of the HTML pages.
type Server struct {
	store         storage.Store
	authenticator auth.Authenticator
	sessions      *auth.SessionProvider
	nav           *NavView
	pages         pageSet
	logger        *slog.Logger
}

// NewServer parses the templates and wires the page handlers.
func NewServer(store storage.Store, authenticator auth.Authenticator, sessions *auth.SessionProvider, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	nav, err := NewNavView(sessions)
	if err != nil {
		return nil, err
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		store:         store,
		authenticator: authenticator,
		sessions:      sessions,
		nav:           nav,
		pages:         pages,
		logger:        logger,
	}, nil
}

// Register mounts the page routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /items/{id}", s.handleItem)
	mux.HandleFunc("GET /cart", s.handleCart)
	mux.HandleFunc("GET /products", s.handleHistory)
	mux.HandleFunc("GET /signin", s.handleSignInForm)
	mux.HandleFunc("POST /signin", s.handleSignIn)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /signout", s.handleSignOut)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFiles())))
}

// routes lists fixed paths used as metric labels.
var routes = map[string]bool{
	"/":         true,
	"/cart":     true,
	"/products": true,
	"/signin":   true,
	"/register": true,
	"/signout":  true,
	"/healthz":  true,
	"/metrics":  true,
}

// RouteLabel maps a request to a bounded label for request metrics.
func RouteLabel(r *http.Request) string {
	path := r.URL.Path
	switch {
	case routes[path]:
		return path
	case strings.HasPrefix(path, "/storefront.v1."):
		return path
	case strings.HasPrefix(path, "/items/"):
		return "/items/{id}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/"
	}
	return "other"
}

// renderPage writes a full page. Render failures are logged and the user
// gets a generic error.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.Nav = s.nav.Data(r)
	body, err := s.pages.render(name, p)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}
