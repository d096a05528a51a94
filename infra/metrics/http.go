package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/infra/logger"
)

// ReportFunc returns the current range report.
type ReportFunc func() model.RangeReport

// NewStatusRouter builds the read-only status API:
//
//	GET /healthz  liveness probe
//	GET /range    current range report as JSON
//	GET /metrics  Prometheus metrics from gatherer
//
// A nil gatherer serves the default Prometheus registry.
func NewStatusRouter(report ReportFunc, gatherer prometheus.Gatherer) *mux.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/range", func(w http.ResponseWriter, _ *http.Request) {
		body, err := json.Marshal(report())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(append(body, '\n'))
	}).Methods(http.MethodGet)
	r.Path("/metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// StartStatusServer serves handler on addr until ctx is canceled.
func StartStatusServer(ctx context.Context, addr string, handler http.Handler) error {
	log := logger.New("status-server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("status server shutdown: %v", err)
		}
	}()
	log.Infof("status server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
