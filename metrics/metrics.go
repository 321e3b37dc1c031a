package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "knockout"

// Metrics groups the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fixturesGenerated *prometheus.CounterVec
	matchesScheduled  prometheus.Counter
	scoresRecorded    prometheus.Counter
	roundsCreated     prometheus.Counter
	champions         prometheus.Counter
	csvRows           *prometheus.CounterVec
	matchCodes        *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		fixturesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixture_matches_generated_total",
			Help:      "Round-one matches created, by kind (match or bye).",
		}, []string{"kind"}),
		matchesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_scheduled_total",
			Help:      "Matches assigned a court and a time window.",
		}),
		scoresRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_recorded_total",
			Help:      "Scores accepted for matches.",
		}),
		roundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_created_total",
			Help:      "Follow-up rounds created by advancement.",
		}),
		champions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "champions_determined_total",
			Help:      "Events that reached a single survivor.",
		}),
		csvRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_total",
			Help:      "Roster CSV rows processed, by result.",
		}, []string{"result"}),
		matchCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_code_operations_total",
			Help:      "Match code generations and verifications, by outcome.",
		}, []string{"operation", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fixturesGenerated, m.matchesScheduled, m.scoresRecorded, m.roundsCreated,
		m.champions, m.csvRows, m.matchCodes, m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FixturesGenerated(matches, byes int) {
	if m == nil {
		return
	}
	m.fixturesGenerated.WithLabelValues("match").Add(float64(matches))
	m.fixturesGenerated.WithLabelValues("bye").Add(float64(byes))
}

func (m *Metrics) MatchesScheduled(n int) {
	if m == nil {
		return
	}
	m.matchesScheduled.Add(float64(n))
}

func (m *Metrics) ScoreRecorded() {
	if m == nil {
		return
	}
	m.scoresRecorded.Inc()
}

func (m *Metrics) RoundCreated() {
	if m == nil {
		return
	}
	m.roundsCreated.Inc()
}

func (m *Metrics) ChampionDetermined() {
	if m == nil {
		return
	}
	m.champions.Inc()
}

func (m *Metrics) CSVRows(valid, invalid int) {
	if m == nil {
		return
	}
	m.csvRows.WithLabelValues("valid").Add(float64(valid))
	m.csvRows.WithLabelValues("invalid").Add(float64(invalid))
}

func (m *Metrics) MatchCode(operation, outcome string) {
	if m == nil {
		return
	}
	m.matchCodes.WithLabelValues(operation, outcome).Inc()
}

// Middleware records count and latency per chi route pattern, so path ids do not blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
