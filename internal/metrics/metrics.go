package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "participium_intake"

// Metrics exposes Prometheus collectors for update dispatch and the intake
// wizard. It satisfies wizard.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	updates        *prometheus.CounterVec
	duplicates     prometheus.Counter
	panics         prometheus.Counter
	inputs         *prometheus.CounterVec
	sessionsStart  prometheus.Counter
	sessionsCancel prometheus.Counter
	submissions    *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// New registers every collector on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Telegram updates received, by kind.",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "duplicate_updates_total",
			Help:      "Redelivered updates skipped by de-duplication.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "update_panics_total",
			Help:      "Updates whose handler panicked.",
		}),
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "inputs_total",
			Help:      "Inputs handled by the wizard, by step and outcome.",
		}, []string{"step", "outcome"}),
		sessionsStart: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Report intake sessions started.",
		}),
		sessionsCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "sessions_cancelled_total",
			Help:      "Report intake sessions cancelled by the caller.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Report submissions, by result (ok or failure kind).",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory. Sessions never expire, so a steady climb means abandoned conversations.",
		}),
	}

	reg.MustRegister(
		m.updates, m.duplicates, m.panics,
		m.inputs, m.sessionsStart, m.sessionsCancel, m.submissions, m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) UpdateReceived(kind string) { m.updates.WithLabelValues(kind).Inc() }
func (m *Metrics) UpdateDuplicate()           { m.duplicates.Inc() }
func (m *Metrics) UpdatePanicked()            { m.panics.Inc() }

func (m *Metrics) SessionStarted()   { m.sessionsStart.Inc() }
func (m *Metrics) SessionCancelled() { m.sessionsCancel.Inc() }

func (m *Metrics) InputHandled(step, outcome string) {
	m.inputs.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) SubmissionSucceeded()         { m.submissions.WithLabelValues("ok").Inc() }
func (m *Metrics) SubmissionFailed(kind string) { m.submissions.WithLabelValues(kind).Inc() }

func (m *Metrics) ActiveSessions(n int) { m.activeSessions.Set(float64(n)) }
