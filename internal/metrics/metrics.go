package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agenthands/listingcheck/internal/core/model"
)

var (
	// Final decisions by entry point and outcome
	Decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listingcheck_decisions_total",
		Help: "Total number of decisions by mode and outcome",
	}, []string{"mode", "decision"})

	// Which threshold gate fired on the hybrid path
	Gates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listingcheck_gate_total",
		Help: "Total number of hybrid evaluations per gate outcome",
	}, []string{"gate"})

	LLMFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listingcheck_llm_fallback_total",
		Help: "Total number of comparator results degraded to an uncertain verdict",
	})

	ProviderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listingcheck_provider_errors_total",
		Help: "Total number of evaluations aborted by a similarity provider failure",
	})

	EvaluationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listingcheck_evaluation_latency_seconds",
		Help:    "Latency of evaluations by mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			Decisions,
			Gates,
			LLMFallbacks,
			ProviderErrors,
			EvaluationLatency,
		)
	})
}

// Recorder feeds engine observations into the package collectors.
type Recorder struct{}

func (Recorder) ObserveDecision(mode string, outcome model.Outcome) {
	Decisions.WithLabelValues(mode, string(outcome)).Inc()
}

func (Recorder) ObserveGate(gate string) {
	Gates.WithLabelValues(gate).Inc()
}

func (Recorder) ObserveLLMFallback() {
	LLMFallbacks.Inc()
}

func (Recorder) ObserveProviderError() {
	ProviderErrors.Inc()
}

func (Recorder) ObserveLatency(mode string, d time.Duration) {
	EvaluationLatency.WithLabelValues(mode).Observe(d.Seconds())
}
