// Package metrics exposes harness activity in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fgharness"

// Recorder owns a private registry so several recorders can coexist in one
// process.
type Recorder struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	BytesReceived   prometheus.Counter
	Iterations      prometheus.Gauge
	Sessions        *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		Registry: reg,
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exercise_requests_total",
				Help:      "Exercise requests issued, by result",
			},
			[]string{"result"},
		),
		RequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exercise_request_duration_seconds",
				Help:      "Time from dial to drained response",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
			},
		),
		BytesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exercise_response_bytes_total",
				Help:      "Response body bytes received",
			},
		),
		Iterations: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "exercise_iterations",
				Help:      "Iterations planned for the last exercise, failed or not",
			},
		),
		Sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Completed sessions, by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}
}

func (r *Recorder) ObserveRequest(d time.Duration, bytes int64, err error) {
	if err != nil {
		r.Requests.WithLabelValues("error").Inc()
		return
	}
	r.Requests.WithLabelValues("ok").Inc()
	r.RequestDuration.Observe(d.Seconds())
	if bytes > 0 {
		r.BytesReceived.Add(float64(bytes))
	}
}

func (r *Recorder) ObserveIterations(n int) {
	r.Iterations.Set(float64(n))
}

func (r *Recorder) ObserveSession(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.Sessions.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
