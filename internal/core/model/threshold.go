package model

import (
	"errors"
	"fmt"
)

// EmbeddingDims are the output sizes the multimodal embedding model supports.
var EmbeddingDims = []int{128, 256, 512, 1408}

const (
	DefaultSimLow       = 0.08
	DefaultSimHigh      = 0.4
	DefaultEmbeddingDim = 512
)

type ThresholdConfig struct {
	SimLow       float64 `json:"sim_low" toml:"sim_low"`
	SimHigh      float64 `json:"sim_high" toml:"sim_high"`
	EmbeddingDim int     `json:"embedding_dim" toml:"embedding_dim"`
}

func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		SimLow:       DefaultSimLow,
		SimHigh:      DefaultSimHigh,
		EmbeddingDim: DefaultEmbeddingDim,
	}
}

func SupportedEmbeddingDim(dim int) bool {
	for _, d := range EmbeddingDims {
		if d == dim {
			return true
		}
	}
	return false
}

func (t ThresholdConfig) Validate() error {
	// Written positively so NaN fails every check.
	if !(t.SimLow >= 0 && t.SimHigh <= 1) {
		return fmt.Errorf("thresholds must lie in [0, 1], got sim_low=%v sim_high=%v", t.SimLow, t.SimHigh)
	}
	if !(t.SimLow < t.SimHigh) {
		return fmt.Errorf("sim_low (%v) must be less than sim_high (%v)", t.SimLow, t.SimHigh)
	}
	if !SupportedEmbeddingDim(t.EmbeddingDim) {
		return errors.New("embedding_dim must be one of 128, 256, 512, 1408")
	}
	return nil
}
