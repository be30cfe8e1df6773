package puenktlich

import "github.com/prometheus/client_golang/prometheus"

// metrics is the optional Prometheus instrumentation. A nil *metrics (no
// Registerer configured) disables every method.
type metrics struct {
	registered prometheus.Gauge
	running    prometheus.Gauge
	fires      prometheus.Counter
	failures   prometheus.Counter
}

func newMetrics(r prometheus.Registerer) *metrics {
	if r == nil {
		return nil
	}
	m := &metrics{
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "puenktlich",
			Name:      "jobs_registered",
			Help:      "Number of jobs currently registered.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "puenktlich",
			Name:      "jobs_running",
			Help:      "Number of jobs whose callback is executing.",
		}),
		fires: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puenktlich",
			Name:      "fires_total",
			Help:      "Total number of job fires dispatched.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puenktlich",
			Name:      "job_errors_total",
			Help:      "Total number of job callback errors.",
		}),
	}
	r.MustRegister(m.registered, m.running, m.fires, m.failures)
	return m
}

func (m *metrics) jobAdded() {
	if m != nil {
		m.registered.Inc()
	}
}

func (m *metrics) jobRemoved() {
	if m != nil {
		m.registered.Dec()
	}
}

func (m *metrics) fireStarted() {
	if m != nil {
		m.fires.Inc()
		m.running.Inc()
	}
}

func (m *metrics) fireDone() {
	if m != nil {
		m.running.Dec()
	}
}

func (m *metrics) jobFailed() {
	if m != nil {
		m.failures.Inc()
	}
}

func (m *metrics) reset() {
	if m != nil {
		m.registered.Set(0)
		m.running.Set(0)
	}
}
