package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/agenthands/listingcheck/internal/core/model"
)

func TestRecorder(t *testing.T) {
	r := Recorder{}

	before := testutil.ToFloat64(Decisions.WithLabelValues("hybrid", "pass"))
	r.ObserveDecision("hybrid", model.OutcomePass)
	assert.Equal(t, before+1, testutil.ToFloat64(Decisions.WithLabelValues("hybrid", "pass")))

	before = testutil.ToFloat64(Gates.WithLabelValues("gray_zone"))
	r.ObserveGate("gray_zone")
	assert.Equal(t, before+1, testutil.ToFloat64(Gates.WithLabelValues("gray_zone")))

	before = testutil.ToFloat64(LLMFallbacks)
	r.ObserveLLMFallback()
	assert.Equal(t, before+1, testutil.ToFloat64(LLMFallbacks))

	before = testutil.ToFloat64(ProviderErrors)
	r.ObserveProviderError()
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderErrors))

	r.ObserveLatency("llm_only", 250*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(EvaluationLatency))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
