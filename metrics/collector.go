package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fixkme/globaltick/tick"
)

const namespace = "globaltick"

// Collector 调度器的Prometheus指标，实现tick.Observer
// Observe*方法只在循环协程上调用，采集可以在任意协程
type Collector struct {
	iterations       prometheus.Counter
	timers           prometheus.Gauge
	fired            *prometheus.CounterVec
	panics           *prometheus.CounterVec
	iterationSeconds prometheus.Histogram
	elapsed          prometheus.Gauge
}

var _ tick.Observer = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector scheduler作为常量标签区分同进程内的多个调度器
func NewCollector(scheduler string) *Collector {
	labels := prometheus.Labels{"scheduler": scheduler}
	return &Collector{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "iterations_total",
			Help:        "Loop iterations executed.",
			ConstLabels: labels,
		}),
		timers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "timers",
			Help:        "Timers registered after the last iteration.",
			ConstLabels: labels,
		}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fired_total",
			Help:        "Timer callbacks invoked, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "panics_total",
			Help:        "Recovered callback panics, by source.",
			ConstLabels: labels,
		}, []string{"source"}),
		iterationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "iteration_seconds",
			Help:        "Time spent in one iteration (broadcast and firing).",
			ConstLabels: labels,
			Buckets:     []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "elapsed_seconds",
			Help:        "Elapsed time carried by the last heartbeat.",
			ConstLabels: labels,
		}),
	}
}

func (c *Collector) ObserveIteration(ev tick.TickEvent, cost time.Duration, timers int) {
	c.iterations.Inc()
	c.timers.Set(float64(timers))
	c.iterationSeconds.Observe(cost.Seconds())
	c.elapsed.Set(ev.ElapsedTime.Seconds())
}

func (c *Collector) ObserveFire(repeat bool) {
	kind := "timeout"
	if repeat {
		kind = "interval"
	}
	c.fired.WithLabelValues(kind).Inc()
}

func (c *Collector) ObservePanic(source string) {
	c.panics.WithLabelValues(source).Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.iterations.Describe(ch)
	c.timers.Describe(ch)
	c.fired.Describe(ch)
	c.panics.Describe(ch)
	c.iterationSeconds.Describe(ch)
	c.elapsed.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.iterations.Collect(ch)
	c.timers.Collect(ch)
	c.fired.Collect(ch)
	c.panics.Collect(ch)
	c.iterationSeconds.Collect(ch)
	c.elapsed.Collect(ch)
}
