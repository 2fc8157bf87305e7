package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/logging"
	"github.com/aretw0/genie/pkg/session"
	"github.com/aretw0/genie/pkg/shell"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the sessions of a Manager.
type Server struct {
	manager   *session.Manager
	logger    *slog.Logger
	metrics   http.Handler
	shellOpts []shell.Option
	spec      *openapi3.T

	mu     sync.Mutex
	shells map[string]*shell.Shell
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts a Prometheus handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithShellOptions configures the dashboard shell created for each session.
func WithShellOptions(opts ...shell.Option) Option {
	return func(s *Server) {
		s.shellOpts = append(s.shellOpts, opts...)
	}
}

// NewServer creates a Server over the manager.
func NewServer(mgr *session.Manager, opts ...Option) (*Server, error) {
	spec, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s := &Server{
		manager: mgr,
		logger:  logging.NewNop(),
		spec:    spec,
		shells:  make(map[string]*shell.Shell),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewHandler creates a new HTTP handler for the manager.
func NewHandler(mgr *session.Manager, opts ...Option) (http.Handler, error) {
	s, err := NewServer(mgr, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler()
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	validate, err := requestValidator(s.spec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/script", s.GetScript)
		r.Get("/alerts", s.ListAlerts)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.OpenSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.CloseSession)
				r.Post("/actions", s.SubmitAction)
				r.Post("/reset", s.ResetSession)
				r.Get("/events", s.SubscribeEvents)
				r.Get("/entries/{seq}/chart", s.GetEntryChart)
				r.Get("/shell", s.GetShell)
				r.Post("/shell/actions", s.SubmitShellAction)
				r.Post("/shell/view", s.SetShellView)
				r.Post("/shell/panel", s.OpenShellPanel)
				r.Delete("/shell/panel", s.CloseShellPanel)
				r.Post("/shell/root-cause", s.SetRootCause)
			})
		})
	})

	return enableCORS(r), nil
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "genie-http",
		"version":     strings.TrimSpace(genie.Version),
		"api_version": apiVersion,
		"script":      s.manager.Store().Name(),
	})
}

// GetScript handles GET /script.
func (s *Server) GetScript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Store().Script())
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Genie API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
