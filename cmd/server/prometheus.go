package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/miretskiy/ossim/simulator"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Prometheus metrics
	promMetrics = struct {
		runsTotal          *prometheus.CounterVec
		runErrorsTotal     *prometheus.CounterVec
		generationSeconds  *prometheus.HistogramVec
		traceSteps         *prometheus.HistogramVec
		lastPageFaults     *prometheus.GaugeVec
		lastSeekTotal      *prometheus.GaugeVec
		lastAvgWaiting     *prometheus.GaugeVec
		activeSessions     prometheus.Gauge
		playbackCommands   *prometheus.CounterVec
		httpRequestsTotal  *prometheus.CounterVec
		httpRequestSeconds *prometheus.HistogramVec
	}{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ossim",
			Name:      "runs_total",
			Help:      "Completed generator runs",
		}, []string{"family", "algorithm"}),
		runErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ossim",
			Name:      "run_errors_total",
			Help:      "Runs rejected by input validation",
		}, []string{"family"}),
		generationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ossim",
			Name:      "generation_duration_seconds",
			Help:      "Time spent computing a trace",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"family"}),
		traceSteps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ossim",
			Name:      "trace_steps",
			Help:      "Number of steps in generated traces",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"family"}),
		lastPageFaults: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ossim",
			Name:      "last_page_faults",
			Help:      "Page faults of the most recent paging run",
		}, []string{"algorithm"}),
		lastSeekTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ossim",
			Name:      "last_total_seek",
			Help:      "Total head movement of the most recent disk run",
		}, []string{"algorithm"}),
		lastAvgWaiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ossim",
			Name:      "last_avg_waiting_time",
			Help:      "Average waiting time of the most recent CPU run",
		}, []string{"algorithm"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ossim",
			Name:      "playback_sessions",
			Help:      "Open websocket playback sessions",
		}),
		playbackCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ossim",
			Name:      "playback_commands_total",
			Help:      "Playback commands received over websocket",
		}, []string{"command"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ossim",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		httpRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ossim",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method", "status"}),
	}
)

func init() {
	prometheus.MustRegister(
		promMetrics.runsTotal,
		promMetrics.runErrorsTotal,
		promMetrics.generationSeconds,
		promMetrics.traceSteps,
		promMetrics.lastPageFaults,
		promMetrics.lastSeekTotal,
		promMetrics.lastAvgWaiting,
		promMetrics.activeSessions,
		promMetrics.playbackCommands,
		promMetrics.httpRequestsTotal,
		promMetrics.httpRequestSeconds,
	)
}

func updatePrometheusMetrics(run *simulator.Run) {
	family := run.Family.String()
	promMetrics.runsTotal.WithLabelValues(family, run.Algorithm).Inc()
	promMetrics.generationSeconds.WithLabelValues(family).Observe(run.ExecutionTimeMs / 1000.0)
	promMetrics.traceSteps.WithLabelValues(family).Observe(float64(run.Trace().Len()))

	switch {
	case run.CPU != nil:
		promMetrics.lastAvgWaiting.WithLabelValues(run.Algorithm).Set(run.CPU.Summary.AvgWaitingTime)
	case run.Paging != nil:
		promMetrics.lastPageFaults.WithLabelValues(run.Algorithm).Set(float64(run.Paging.Summary.Faults))
	case run.Disk != nil:
		promMetrics.lastSeekTotal.WithLabelValues(run.Algorithm).Set(float64(run.Disk.TotalSeekTime))
	}
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware instruments requests, labelled by chi route pattern.
// The websocket route is skipped since the upgrade needs the raw writer.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		status := strconv.Itoa(sr.status)
		promMetrics.httpRequestsTotal.WithLabelValues(path, r.Method, status).Inc()
		promMetrics.httpRequestSeconds.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}
