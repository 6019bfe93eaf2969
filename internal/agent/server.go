package agent

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/portview/internal/source"
	"github.com/five82/portview/internal/view"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a local Fetcher over HTTP for RemoteFetcher clients.
type Server struct {
	fetcher  source.Fetcher
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
	router   *mux.Router
	platform func() source.PlatformInfo
}

// New builds a Server around f.
func New(f source.Fetcher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		fetcher:  f,
		log:      log,
		registry: reg,
		metrics:  newMetrics(reg),
		platform: source.Platform,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/connections", s.connectionsRoute).Methods(http.MethodGet)
	router.HandleFunc("/api/platform", s.platformRoute).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.healthRoute).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("agent listening", zap.String("addr", ln.Addr().String()), zap.String("source", s.fetcher.Name()))
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve agent")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown agent")
	}
	s.log.Info("agent stopped")
	return nil
}

func (s *Server) connectionsRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	protocol, err := view.ParseProtocol(q.Get("protocol"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, source.ErrorResponse{Error: err.Error()})
		return
	}

	res := source.Fetch(r.Context(), s.fetcher, s.log)
	s.metrics.fetchDuration.Observe(res.Duration.Seconds())
	if res.Err != nil {
		s.metrics.fetchTotal.WithLabelValues(res.Err.Kind.String()).Inc()
		// The raw error text lets the client classify the failure itself.
		writeJSON(w, http.StatusServiceUnavailable, source.ErrorResponse{Error: res.Err.Error()})
		return
	}
	s.metrics.fetchTotal.WithLabelValues("ok").Inc()
	s.metrics.connections.Set(float64(len(res.Connections)))

	rows := view.Filter(res.Connections, view.FilterCriteria{
		Protocol:   protocol,
		PortPrefix: q.Get("port"),
	})
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) platformRoute(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.platform())
}

func (s *Server) healthRoute(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
