// Package poolmetrics exposes a taskpool.Pool's live state as Prometheus
// metrics. It is a thin prometheus.Collector wrapping (*taskpool.Pool).Stats,
// scraped on demand rather than polled on an interval, matching how the
// client_golang library expects a Collector to behave.
package poolmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-foundations/taskpool"
)

// Collector adapts a *taskpool.Pool to prometheus.Collector.
type Collector struct {
	pool *taskpool.Pool

	queueDepth    *prometheus.Desc
	tasksExecuted *prometheus.Desc
	tasksStolen   *prometheus.Desc
}

// NewCollector builds a Collector over pool. namespace is used as the
// Prometheus metric namespace (e.g. "myservice"); pass "" to omit it.
func NewCollector(pool *taskpool.Pool, namespace string) *Collector {
	labels := []string{"worker"}
	return &Collector{
		pool: pool,
		queueDepth: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "taskpool", "queue_depth"),
			"Point-in-time number of unpopped tasks in a worker's queue.",
			labels, nil,
		),
		tasksExecuted: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "taskpool", "tasks_executed_total"),
			"Total tasks invoked by a worker.",
			labels, nil,
		),
		tasksStolen: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "taskpool", "tasks_stolen_total"),
			"Total tasks a worker invoked after stealing them from a sibling.",
			labels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queueDepth
	ch <- c.tasksExecuted
	ch <- c.tasksStolen
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.pool.Stats() {
		label := strconv.FormatUint(uint64(s.ID), 10)

		ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(s.QueueDepth), label)
		ch <- prometheus.MustNewConstMetric(c.tasksExecuted, prometheus.CounterValue, float64(s.TasksExecuted), label)
		ch <- prometheus.MustNewConstMetric(c.tasksStolen, prometheus.CounterValue, float64(s.TasksStolen), label)
	}
}
