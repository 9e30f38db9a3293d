package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	promNamespace         = "plugmux"
	promDispatchSubsystem = "dispatch"
	promPluginSubsystem   = "plugin"
)

// Prometheus implements the prometheus metrics backend.
type Prometheus struct {
	dispatchM         *prometheus.HistogramVec
	dispatchCounterM  *prometheus.CounterVec
	notFoundM         prometheus.Counter
	activityFailuresM *prometheus.CounterVec

	registry *prometheus.Registry
	handler  http.Handler
}

// NewPrometheus returns a new Prometheus metrics backend.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		dispatchM: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: promDispatchSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration in seconds of dispatched plugin requests.",
		}, []string{"plugin"}),
		dispatchCounterM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promDispatchSubsystem,
			Name:      "requests_total",
			Help:      "Total number of requests dispatched per plugin.",
		}, []string{"plugin"}),
		notFoundM: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promDispatchSubsystem,
			Name:      "not_found_total",
			Help:      "Total number of requests no registered route covered.",
		}),
		activityFailuresM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promPluginSubsystem,
			Name:      "activity_check_failures_total",
			Help:      "Total number of recovered plugin activity check failures.",
		}, []string{"plugin"}),
		registry: prometheus.NewRegistry(),
	}

	p.registry.MustRegister(
		p.dispatchM,
		p.dispatchCounterM,
		p.notFoundM,
		p.activityFailuresM,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p.handler = promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
	return p
}

// Handler returns the handler exposing the collected metrics.
func (p *Prometheus) Handler() http.Handler {
	return p.handler
}

func (p *Prometheus) MeasureDispatch(pluginName string, start time.Time) {
	d := time.Since(start)
	p.dispatchM.WithLabelValues(pluginName).Observe(d.Seconds())
	p.dispatchCounterM.WithLabelValues(pluginName).Inc()
}

func (p *Prometheus) IncNotFound() {
	p.notFoundM.Inc()
}

func (p *Prometheus) IncActivityCheckFailure(pluginName string) {
	p.activityFailuresM.WithLabelValues(pluginName).Inc()
}
