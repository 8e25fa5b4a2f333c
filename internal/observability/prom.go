package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/geocoder89/staffhub/internal/gate"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Auth
	SessionResolutions *prometheus.CounterVec
	GateDecisions      *prometheus.CounterVec
	SignIns            *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "staffhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "staffhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "staffhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "staffhub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "staffhub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		SessionResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "staffhub",
				Subsystem: "session",
				Name:      "resolutions_total",
				Help:      "Session cookie resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "staffhub",
				Subsystem: "gate",
				Name:      "decisions_total",
				Help:      "Authorization gate decisions by state and action.",
			},
			[]string{"state", "action"},
		),
		SignIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "staffhub",
				Subsystem: "auth",
				Name:      "sign_ins_total",
				Help:      "Sign-in attempts by result.",
			},
			[]string{"result"}, // result=ok|invalid_credentials|error
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.SessionResolutions, p.GateDecisions, p.SignIns,
	)

	return p
}

// ObserveResolution implements session.Observer.
func (p *Prom) ObserveResolution(_ context.Context, outcome session.Outcome, _ error) {
	p.SessionResolutions.WithLabelValues(string(outcome)).Inc()
}

// RecordDecision implements gate.Recorder.
func (p *Prom) RecordDecision(state gate.State, action gate.Action) {
	p.GateDecisions.WithLabelValues(state.String(), action.String()).Inc()
}

func (p *Prom) RecordSignIn(result string) {
	p.SignIns.WithLabelValues(result).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
