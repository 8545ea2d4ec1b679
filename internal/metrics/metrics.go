// Package metrics exposes store-call and cache counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"clubdir/internal/cache"
)

var (
	storeCallsDesc = prometheus.NewDesc(
		"clubdir_store_calls_total",
		"Calls that reached the remote store, by table",
		[]string{"table"},
		nil,
	)
	cacheEntriesDesc = prometheus.NewDesc(
		"clubdir_cache_entries",
		"Entries currently held by the read-through cache",
		nil,
		nil,
	)
	cacheBypassDesc = prometheus.NewDesc(
		"clubdir_cache_bypass",
		"1 when the read-through cache is bypassed",
		nil,
		nil,
	)
)

// CacheCollector is a custom Prometheus collector that reads the call
// accountant and the cache on each scrape.
type CacheCollector struct {
	cache *cache.Cache
	stats *cache.Stats
}

// NewCacheCollector creates a collector over c and stats.
func NewCacheCollector(c *cache.Cache, stats *cache.Stats) *CacheCollector {
	return &CacheCollector{cache: c, stats: stats}
}

// Describe sends the metric descriptors to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storeCallsDesc
	ch <- cacheEntriesDesc
	ch <- cacheBypassDesc
}

// Collect emits the current counters. A debug reset shows up as a counter
// reset.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	for table, n := range snap.PerTable {
		ch <- prometheus.MustNewConstMetric(storeCallsDesc, prometheus.CounterValue, float64(n), table)
	}
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(c.cache.Len()))

	bypass := 0.0
	if c.cache.Bypass() {
		bypass = 1
	}
	ch <- prometheus.MustNewConstMetric(cacheBypassDesc, prometheus.GaugeValue, bypass)
}

// Register adds the cache collector to reg.
func Register(reg prometheus.Registerer, c *cache.Cache, stats *cache.Stats) error {
	return reg.Register(NewCacheCollector(c, stats))
}
