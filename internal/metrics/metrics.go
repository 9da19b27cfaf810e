// Package metrics exposes cache.Stats in Prometheus text exposition
// format, built directly on the low-level dto.MetricFamily + expfmt
// encoding primitives rather than the heavier client_golang registry.
package metrics

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/go-proxylab/cacheproxy/internal/cache"
)

// StatsSource is satisfied by *cache.Cache.
type StatsSource interface {
	Stats() cache.Stats
}

// Handler serves a /metrics endpoint describing the cache's current
// bookkeeping as Prometheus gauges and counters.
func Handler(source StatsSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := source.Stats()
		families := []*dto.MetricFamily{
			gaugeFamily("cacheproxy_cache_entries", "Number of objects currently cached.", float64(stats.Entries)),
			gaugeFamily("cacheproxy_cache_current_size_bytes", "Total bytes currently held in the cache.", float64(stats.CurrentSize)),
			counterFamily("cacheproxy_cache_hits_total", "Cache lookups that matched an entry.", float64(stats.Hits)),
			counterFamily("cacheproxy_cache_misses_total", "Cache lookups that matched no entry.", float64(stats.Misses)),
			counterFamily("cacheproxy_cache_admissions_total", "Responses admitted to the cache.", float64(stats.Admissions)),
			counterFamily("cacheproxy_cache_evictions_total", "Entries evicted to make room for a new admission.", float64(stats.Evictions)),
		}

		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, fam := range families {
			if err := enc.Encode(fam); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
	})
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	t := dto.MetricType_GAUGE
	return &dto.MetricFamily{
		Name: strPtr(name),
		Help: strPtr(help),
		Type: &t,
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: float64Ptr(value)}},
		},
	}
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	t := dto.MetricType_COUNTER
	return &dto.MetricFamily{
		Name: strPtr(name),
		Help: strPtr(help),
		Type: &t,
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: float64Ptr(value)}},
		},
	}
}

func strPtr(s string) *string       { return &s }
func float64Ptr(f float64) *float64 { return &f }
