package model

import "strings"

type Verdict string

const (
	VerdictPass      Verdict = "pass"
	VerdictFail      Verdict = "fail"
	VerdictUncertain Verdict = "uncertain"
)

// ParseVerdict maps a model-supplied verdict onto the closed set.
// "review" is accepted as a synonym of uncertain; anything unknown is uncertain.
func ParseVerdict(s string) Verdict {
	v, _ := LookupVerdict(s)
	return v
}

// LookupVerdict is ParseVerdict that also reports whether s was a recognized value.
func LookupVerdict(s string) (Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass":
		return VerdictPass, true
	case "fail":
		return VerdictFail, true
	case "uncertain", "review":
		return VerdictUncertain, true
	default:
		return VerdictUncertain, false
	}
}

type Attribute string

const (
	AttributeBrand       Attribute = "brand"
	AttributeProductType Attribute = "product_type"
	AttributeColor       Attribute = "color"
	AttributeMaterial    Attribute = "material"
	AttributeOther       Attribute = "other"
)

func (a Attribute) Valid() bool {
	switch a {
	case AttributeBrand, AttributeProductType, AttributeColor, AttributeMaterial, AttributeOther:
		return true
	}
	return false
}

type SourcePair string

const (
	PairImageTitle       SourcePair = "image_title"
	PairImageDescription SourcePair = "image_description"
	PairTitleDescription SourcePair = "title_description"
)

// SourcePairs lists every pair in canonical order.
var SourcePairs = []SourcePair{PairImageTitle, PairImageDescription, PairTitleDescription}

func (p SourcePair) Valid() bool {
	switch p {
	case PairImageTitle, PairImageDescription, PairTitleDescription:
		return true
	}
	return false
}

type Severity string

const (
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

func (s Severity) Valid() bool {
	return s == SeverityMinor || s == SeverityMajor
}

// Conflict is one attribute-level mismatch between two sources.
type Conflict struct {
	Attribute        Attribute  `json:"attribute"`
	SourcePair       SourcePair `json:"source_pair"`
	TitleValue       *string    `json:"title_value"`
	ImageValue       *string    `json:"image_value"`
	DescriptionValue *string    `json:"description_value"`
	Severity         Severity   `json:"severity"`
	Comment          string     `json:"comment"`
}

// LLMVerdict is the normalized comparator output. Verdict is never empty.
type LLMVerdict struct {
	Verdict           Verdict        `json:"verdict"`
	Conflicts         []Conflict     `json:"conflicts"`
	PairDisagreements []SourcePair   `json:"pair_disagreements"`
	Support           map[string]any `json:"support"`
	Notes             string         `json:"notes"`
}

// UncertainVerdict is the degraded verdict used when the comparator output is unusable.
func UncertainVerdict(notes string) LLMVerdict {
	return LLMVerdict{
		Verdict:           VerdictUncertain,
		Conflicts:         []Conflict{},
		PairDisagreements: []SourcePair{},
		Support:           map[string]any{},
		Notes:             notes,
	}
}
