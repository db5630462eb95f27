// Package metrics defines the prometheus collectors for the fund data pipeline.
// All methods are safe to call on a nil *Collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fundwallet"

// Collectors groups every metric the service exports.
type Collectors struct {
	FetchBytes    prometheus.Counter
	FetchDuration *prometheus.HistogramVec
	CacheLookups  *prometheus.CounterVec
	PipelineLoads *prometheus.CounterVec
	PipelineState prometheus.Gauge
	RecordsBuilt  prometheus.Gauge
	SkippedRows   *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		FetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_bytes_total",
			Help:      "Bytes downloaded from the artifact host.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of artifact downloads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Persistent cache lookups by result.",
		}, []string{"result"}),
		PipelineLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_loads_total",
			Help:      "Completed pipeline loads by source and outcome.",
		}, []string{"source", "outcome"}),
		PipelineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_state",
			Help:      "Current pipeline state (0 empty, 1 loading, 2 partial, 3 ready).",
		}),
		RecordsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_built",
			Help:      "Fund records produced by the last build.",
		}),
		SkippedRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skipped_rows",
			Help:      "Rows skipped by the last build, by dataset.",
		}, []string{"dataset"}),
	}

	reg.MustRegister(
		c.FetchBytes,
		c.FetchDuration,
		c.CacheLookups,
		c.PipelineLoads,
		c.PipelineState,
		c.RecordsBuilt,
		c.SkippedRows,
	)
	return c
}

// ObserveFetch records one download.
func (c *Collectors) ObserveFetch(bytes int, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.FetchBytes.Add(float64(bytes))
	c.FetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// CacheLookup records a cache lookup result (fresh, stale, miss, error).
func (c *Collectors) CacheLookup(result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// PipelineLoad records a finished load.
func (c *Collectors) PipelineLoad(source string, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.PipelineLoads.WithLabelValues(source, outcome).Inc()
}

// SetPipelineState records the numeric pipeline state.
func (c *Collectors) SetPipelineState(state int) {
	if c == nil {
		return
	}
	c.PipelineState.Set(float64(state))
}

// RecordBuild records the size of the last build and its skip counts.
func (c *Collectors) RecordBuild(records, skippedDaily, skippedMeta, unmatched int) {
	if c == nil {
		return
	}
	c.RecordsBuilt.Set(float64(records))
	c.SkippedRows.WithLabelValues("daily").Set(float64(skippedDaily))
	c.SkippedRows.WithLabelValues("meta").Set(float64(skippedMeta))
	c.SkippedRows.WithLabelValues("unmatched").Set(float64(unmatched))
}
