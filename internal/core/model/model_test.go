package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
		ok   bool
	}{
		{"pass", VerdictPass, true},
		{" FAIL ", VerdictFail, true},
		{"Uncertain", VerdictUncertain, true},
		{"review", VerdictUncertain, true},
		{"maybe", VerdictUncertain, false},
		{"", VerdictUncertain, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := LookupVerdict(tt.in)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ParseVerdict(tt.in))
		})
	}
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, OutcomePass, OutcomeFor(VerdictPass))
	assert.Equal(t, OutcomeFail, OutcomeFor(VerdictFail))
	assert.Equal(t, OutcomeReview, OutcomeFor(VerdictUncertain))
	assert.Equal(t, OutcomeReview, OutcomeFor(Verdict("bogus")))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, AttributeColor.Valid())
	assert.True(t, AttributeOther.Valid())
	assert.False(t, Attribute("size").Valid())

	for _, p := range SourcePairs {
		assert.True(t, p.Valid())
	}
	assert.False(t, SourcePair("title_image").Valid())

	assert.True(t, SeverityMajor.Valid())
	assert.False(t, Severity("critical").Valid())
}

func TestThresholdConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ThresholdConfig
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"full range", ThresholdConfig{SimLow: 0, SimHigh: 1, EmbeddingDim: 128}, false},
		{"inverted", ThresholdConfig{SimLow: 0.5, SimHigh: 0.3, EmbeddingDim: 512}, true},
		{"equal", ThresholdConfig{SimLow: 0.3, SimHigh: 0.3, EmbeddingDim: 512}, true},
		{"negative low", ThresholdConfig{SimLow: -0.1, SimHigh: 0.3, EmbeddingDim: 512}, true},
		{"high above one", ThresholdConfig{SimLow: 0.1, SimHigh: 1.1, EmbeddingDim: 512}, true},
		{"bad dim", ThresholdConfig{SimLow: 0.1, SimHigh: 0.3, EmbeddingDim: 768}, true},
		{"nan low", ThresholdConfig{SimLow: math.NaN(), SimHigh: 0.4, EmbeddingDim: 512}, true},
		{"nan high", ThresholdConfig{SimLow: 0.08, SimHigh: math.NaN(), EmbeddingDim: 512}, true},
		{"both nan", ThresholdConfig{SimLow: math.NaN(), SimHigh: math.NaN(), EmbeddingDim: 512}, true},
		{"infinite high", ThresholdConfig{SimLow: 0.08, SimHigh: math.Inf(1), EmbeddingDim: 512}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDecision_SerializesArrays(t *testing.T) {
	raw, err := json.Marshal(NewDecision())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"image_title_similarity": null,
		"image_description_similarity": null,
		"title_description_similarity": null,
		"llm_verdict": null,
		"flags": [],
		"decision": "review",
		"reasons": []
	}`, string(raw))
}

func TestUncertainVerdict(t *testing.T) {
	raw, err := json.Marshal(UncertainVerdict("empty_or_unparseable"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"verdict": "uncertain",
		"conflicts": [],
		"pair_disagreements": [],
		"support": {},
		"notes": "empty_or_unparseable"
	}`, string(raw))
}
