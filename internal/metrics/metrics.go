package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns the Prometheus registry of the process. It satisfies
// agenda.Observer so engines report into it directly. A nil *Service is a
// valid no-op.
type Service struct {
	registry *prometheus.Registry
	handler  http.Handler

	recomputes *prometheus.CounterVec
	placements *prometheus.GaugeVec
	mutations  *prometheus.CounterVec
	rejections *prometheus.CounterVec

	refreshes   *prometheus.CounterVec
	icsEvents   prometheus.Gauge
	lastRefresh prometheus.Gauge

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_recomputes_total",
			Help: "Layout and free-time recomputations per day",
		}, []string{"day"}),
		placements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "agenda_placements",
			Help: "Events placed by the last layout pass per day",
		}, []string{"day"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_mutations_total",
			Help: "Event boundary changes made by gestures",
		}, []string{"day", "gesture"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_rejected_edits_total",
			Help: "Gesture edits rejected for leaving an event without duration",
		}, []string{"day"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ics_refresh_total",
			Help: "ICS refresh runs by result",
		}, []string{"result"}),
		icsEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ics_events",
			Help: "Events loaded by the last ICS refresh",
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ics_last_refresh_timestamp_seconds",
			Help: "Unix time of the last ICS refresh",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}

	registry.MustRegister(
		s.recomputes, s.placements, s.mutations, s.rejections,
		s.refreshes, s.icsEvents, s.lastRefresh,
		s.requestDuration, s.requestTotal,
		collectors.NewGoCollector(),
	)
	s.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return s
}

// Handler exposes the registry in the Prometheus text format.
func (s *Service) Handler() http.Handler {
	if s == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return s.handler
}

// Registry is exposed for tests and extra collectors.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) Recomputed(day string, placements int) {
	if s == nil {
		return
	}
	s.recomputes.WithLabelValues(day).Inc()
	s.placements.WithLabelValues(day).Set(float64(placements))
}

func (s *Service) Mutated(day, gesture string) {
	if s == nil {
		return
	}
	s.mutations.WithLabelValues(day, gesture).Inc()
}

func (s *Service) Rejected(day string, _ error) {
	if s == nil {
		return
	}
	s.rejections.WithLabelValues(day).Inc()
}

// ObserveRefresh records one ICS refresh run.
func (s *Service) ObserveRefresh(events int, err error, at time.Time) {
	if s == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.refreshes.WithLabelValues(result).Inc()
	s.icsEvents.Set(float64(events))
	s.lastRefresh.Set(float64(at.Unix()))
}

// ObserveHTTPRequest records one served request.
func (s *Service) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	s.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}
