package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	skybrief "github.com/skybrief/skybrief-golang"
)

const correlationIDHeader = "X-Correlation-ID"

// Server hosts the registered functions over HTTP.
type Server struct {
	cfg      Config
	log      *logrus.Logger
	registry *skybrief.FunctionRegistry
	metrics  *Metrics
	server   *http.Server
}

// New builds a server around a function registry.
func New(cfg Config, log *logrus.Logger, registry *skybrief.FunctionRegistry) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  NewMetrics(),
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}
	return s
}

// Router assembles the routes and middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.correlationID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", correlationIDHeader},
	}))

	r.Get("/healthz", s.handleHealth)
	if s.cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	for _, name := range s.registry.Names() {
		name := name
		r.Get("/api/"+name, s.handleFunction(name))
		r.Post("/api/"+name, s.handleFunction(name))
	}

	return r
}

// Listen starts serving and blocks until the server stops.
func (s *Server) Listen() error {
	s.log.WithField("addr", s.server.Addr).Info("tool server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// correlationID tags every request with an id for log correlation, keeping a
// caller-supplied one when present.
func (s *Server) correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withCorrelationID(r.Context(), id)))
	})
}

type contextKey string

const correlationIDContextKey contextKey = "correlation_id"

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, id)
}

func correlationIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"functions": s.registry.Names(),
	})
}

// handleFunction serves one registered function. Arguments come from the
// query string on GET and from the JSON body on POST; body fields win when
// both are present.
func (s *Server) handleFunction(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entry := s.log.WithFields(logrus.Fields{
			"function":       name,
			"correlation_id": correlationIDFrom(r.Context()),
		})

		args, err := decodeRequestArgs(r)
		if err != nil {
			entry.WithError(err).Warn("bad request")
			s.metrics.InvocationErrors.WithLabelValues(name).Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		fn, ok := s.registry.Resolve(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown function: " + name})
			return
		}

		s.metrics.InvocationsTotal.WithLabelValues(name).Inc()
		output, err := fn(r.Context(), args)
		s.metrics.DurationHistogram.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			entry.WithError(err).Error("function failed")
			s.metrics.InvocationErrors.WithLabelValues(name).Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		entry.WithField("duration", time.Since(start)).Info("function served")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(output))
	}
}

func decodeRequestArgs(r *http.Request) (map[string]any, error) {
	args := map[string]any{}

	for key, vals := range r.URL.Query() {
		if len(vals) == 0 {
			continue
		}
		args[key] = coerceQueryValue(vals[0])
	}

	if r.Method == http.MethodPost && r.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if err.Error() != "EOF" {
				return nil, fmt.Errorf("invalid JSON body: %w", err)
			}
		}
		for k, v := range body {
			args[k] = v
		}
	}

	return args, nil
}

// coerceQueryValue turns numeric query parameters into the float64 shape
// JSON bodies produce, so functions see one argument type.
func coerceQueryValue(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
