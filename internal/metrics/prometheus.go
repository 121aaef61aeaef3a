package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FingerprintsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sdhash_fingerprints_total",
		Help: "Total number of fingerprints computed, by kind",
	}, []string{"kind"})

	FingerprintErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sdhash_fingerprint_errors_total",
		Help: "Total number of inputs that could not be fingerprinted",
	})

	FingerprintDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sdhash_fingerprint_duration_seconds",
		Help:    "Duration of decoding and fingerprinting one input",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sdhash_fingerprint_cache_hits_total",
		Help: "Total number of fingerprints served from the content cache",
	})

	DuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sdhash_duplicates_detected_total",
		Help: "Total number of inputs found to duplicate an indexed image",
	})

	IndexedImages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sdhash_indexed_images",
		Help: "Number of images currently held in the fingerprint index",
	})
)
