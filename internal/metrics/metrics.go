package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrdersGeocoded  *prometheus.CounterVec
	ProviderErrors  prometheus.Counter
	RequestSeconds  *prometheus.HistogramVec
	InflightLookups prometheus.Gauge
	CachedLocations prometheus.Gauge
	CoalescedOrders prometheus.Counter
	BatchRuns       prometheus.Counter
	Assignments     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		OrdersGeocoded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_orders_geocoded_total",
			Help: "Total number of geocoded delivery orders.",
		}, []string{"status"}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_geocoding_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		InflightLookups: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_geocoding_inflight_lookups",
			Help: "Current number of in-flight geocoding lookups.",
		}),
		CachedLocations: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_location_cache_entries",
			Help: "Current number of orders with a cached location.",
		}),
		CoalescedOrders: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_geocode_queue_coalesced_total",
			Help: "Total number of queued orders replaced by a newer snapshot before the debounce fired.",
		}),
		BatchRuns: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_geocode_batch_runs_total",
			Help: "Total number of geocode batch runs.",
		}),
		Assignments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_driver_assignments_total",
			Help: "Total number of driver assignment mutations.",
		}, []string{"result"}),
	}
}
