// Package dashboard serves the population dashboard page and its JSON API.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/config"
	"github.com/sells-group/demography-cli/internal/model"
	"github.com/sells-group/demography-cli/internal/monitoring"
	"github.com/sells-group/demography-cli/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Store is the subset of store.Store the dashboard reads.
type Store interface {
	Source
	ListLoads(ctx context.Context, filter store.LoadFilter) ([]model.LoadEntry, error)
	Ping(ctx context.Context) error
}

// Options configures optional server collaborators.
type Options struct {
	Metrics   *monitoring.Metrics
	Gatherer  prometheus.Gatherer
	Collector *monitoring.Collector
	// LookbackHours bounds the /api/loads summary window. Default 24.
	LookbackHours int
}

// Server holds the dashboard handlers.
type Server struct {
	st        Store
	cache     *Cache
	cfg       config.DashboardConfig
	metrics   *monitoring.Metrics
	gatherer  prometheus.Gatherer
	collector *monitoring.Collector
	lookback  int
}

// NewServer creates a dashboard server over st.
func NewServer(st Store, cfg config.DashboardConfig, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Collector == nil {
		opts.Collector = monitoring.NewCollector(st, nil, 0)
	}
	if opts.LookbackHours <= 0 {
		opts.LookbackHours = 24
	}
	return &Server{
		st:        st,
		cache:     NewCache(st),
		cfg:       cfg,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		collector: opts.Collector,
		lookback:  opts.LookbackHours,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/options", s.handleOptions)
		r.Get("/charts", s.handleCharts)
		r.Get("/observations", s.handleObservations)
		r.Get("/export.xlsx", s.handleExport)
		r.Get("/loads", s.handleLoads)
	})

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if s.metrics == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.DashboardRequests.WithLabelValues(route).Inc()
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("dashboard: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("dashboard: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
