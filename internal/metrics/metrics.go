package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/alarm-compiler/internal/cfn"
)

const (
	namespace = "alarm_compiler"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Collector holds the compilation metrics of one process.
type Collector struct {
	// registry owns every collector below.
	registry *prometheus.Registry
	// resources is the number of resources of the last successful run by type.
	resources *prometheus.GaugeVec
	// runs counts compilations by result.
	runs *prometheus.CounterVec
	// duration is the duration of the last run.
	duration prometheus.Gauge
	// lastSuccess is the Unix time of the last successful run.
	lastSuccess prometheus.Gauge
}

// New returns a collector with a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resources",
			Help:      "Resources produced by the last successful compilation, by type.",
		}, []string{"type"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Compilations by result.",
		}, []string{"result"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last compilation.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful compilation.",
		}),
	}

	c.registry.MustRegister(c.resources, c.runs, c.duration, c.lastSuccess)

	return c
}

// ObserveSuccess records a successful run.
func (c *Collector) ObserveSuccess(resources cfn.Resources, elapsed time.Duration) {
	c.resources.Reset()

	for _, resourceType := range []string{
		cfn.TypeAlarm,
		cfn.TypeCompositeAlarm,
		cfn.TypeTopic,
		cfn.TypeMetricFilter,
	} {
		c.resources.WithLabelValues(resourceType).Set(0)
	}

	for resourceType, count := range resources.CountByType() {
		c.resources.WithLabelValues(resourceType).Set(float64(count))
	}

	c.runs.WithLabelValues(resultSuccess).Inc()
	c.duration.Set(elapsed.Seconds())
	c.lastSuccess.SetToCurrentTime()
}

// ObserveFailure records a failed run.
func (c *Collector) ObserveFailure(elapsed time.Duration) {
	c.runs.WithLabelValues(resultFailure).Inc()
	c.duration.Set(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteFile writes the metrics in the text exposition format, atomically
// replacing path.
func (c *Collector) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}

	return nil
}
