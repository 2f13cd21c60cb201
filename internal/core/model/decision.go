package model

type Outcome string

const (
	OutcomePass   Outcome = "pass"
	OutcomeFail   Outcome = "fail"
	OutcomeReview Outcome = "review"
)

// OutcomeFor maps an LLM verdict to the final decision.
func OutcomeFor(v Verdict) Outcome {
	switch v {
	case VerdictPass:
		return OutcomePass
	case VerdictFail:
		return OutcomeFail
	default:
		return OutcomeReview
	}
}

const (
	FlagLLMOnly          = "LLM_ONLY"
	FlagLLMFallbackError = "LLM_FALLBACK_ERROR"
	FlagGrayZoneLLM      = "GRAY_ZONE_LLM"
)

// SimilarityTriple holds the three pairwise cosine similarities.
// Nil fields mean the similarity was not computed (LLM-only mode).
type SimilarityTriple struct {
	ImageTitle       *float64 `json:"image_title_similarity"`
	ImageDescription *float64 `json:"image_description_similarity"`
	TitleDescription *float64 `json:"title_description_similarity"`
}

type Decision struct {
	SimilarityTriple
	LLMVerdict *LLMVerdict `json:"llm_verdict"`
	Flags      []string    `json:"flags"`
	Decision   Outcome     `json:"decision"`
	Reasons    []string    `json:"reasons"`
}

// NewDecision returns an empty decision with non-nil slices so it serializes as arrays.
func NewDecision() Decision {
	return Decision{
		Flags:    []string{},
		Decision: OutcomeReview,
		Reasons:  []string{},
	}
}
