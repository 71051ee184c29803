// monitor/monitor.go
package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wfunc/rpsserver/models"
)

type Metrics struct {
	GamesCreated   prometheus.Counter
	MovesSubmitted prometheus.Counter
	GamesFinished  *prometheus.CounterVec
	GamesDeleted   prometheus.Counter
	OnlineSessions prometheus.Gauge
	RequestLatency *prometheus.HistogramVec
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Total number of games created",
		}),
		MovesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_submitted_total",
			Help:      "Total number of accepted moves",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of finished games by result",
		}, []string{"result"}),
		GamesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_deleted_total",
			Help:      "Total number of deleted games",
		}),
		OnlineSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_sessions",
			Help:      "Number of connected websocket sessions",
		}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.GamesCreated,
		m.MovesSubmitted,
		m.GamesFinished,
		m.GamesDeleted,
		m.OnlineSessions,
		m.RequestLatency,
	)

	return m
}

// Monitor owns a private registry so several instances can coexist in tests.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	m := &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started",
		}, func() float64 {
			return time.Since(m.startTime).Seconds()
		}),
	)

	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NewServer returns the metrics HTTP server; the caller runs and stops it.
func (m *Monitor) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// 以下记录方法在 nil *Monitor 上为空操作

func (m *Monitor) IncGamesCreated() {
	if m == nil {
		return
	}
	m.metrics.GamesCreated.Inc()
}

func (m *Monitor) IncMovesSubmitted() {
	if m == nil {
		return
	}
	m.metrics.MovesSubmitted.Inc()
}

func (m *Monitor) ObserveGameFinished(result models.Result) {
	if m == nil {
		return
	}
	m.metrics.GamesFinished.WithLabelValues(string(result)).Inc()
}

func (m *Monitor) IncGamesDeleted() {
	if m == nil {
		return
	}
	m.metrics.GamesDeleted.Inc()
}

func (m *Monitor) IncOnlineSessions() {
	if m == nil {
		return
	}
	m.metrics.OnlineSessions.Inc()
}

func (m *Monitor) DecOnlineSessions() {
	if m == nil {
		return
	}
	m.metrics.OnlineSessions.Dec()
}

func (m *Monitor) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.metrics.RequestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
