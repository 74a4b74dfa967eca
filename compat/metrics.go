package compat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCompatible    = "compatible"
	outcomeNotCompatible = "not_compatible"
	outcomeError         = "error"
)

var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flames",
		Subsystem: "predictor",
		Name:      "predictions_total",
	}, []string{"outcome"})
	PredictSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flames",
		Subsystem: "predictor",
		Name:      "predict_seconds",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flames",
		Subsystem: "predictor",
		Name:      "cache_hits_total",
	})
	HistoryErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flames",
		Subsystem: "predictor",
		Name:      "history_errors_total",
	})
)
