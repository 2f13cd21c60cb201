// Package normalize turns untrusted comparator output into a well-formed LLMVerdict.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/listingcheck/internal/core/common"
	"github.com/agenthands/listingcheck/internal/core/model"
)

const (
	NotesEmptyOrUnparseable = "empty_or_unparseable"
	NotesNotAnObject        = "not_an_object"
	NotesValidationError    = "validation_error"
	notesCallErrorPrefix    = "llm_call_error: "
	maxNotesErrorRunes      = 200
)

// Normalize coerces the raw comparator text into the LLMVerdict schema. It never fails.
// The returned bool reports whether the fallback path was taken: a call error, a payload
// that is not a JSON object, an empty object, or an object without a recognizable verdict.
// Callers flag the decision with LLM_FALLBACK_ERROR.
func Normalize(raw string, callErr error) (model.LLMVerdict, bool) {
	if callErr != nil {
		return model.UncertainVerdict(notesCallErrorPrefix + clampRunes(callErr.Error(), maxNotesErrorRunes)), true
	}

	obj, err := common.ParseObject(raw)
	if err != nil {
		if errors.Is(err, common.ErrNoObject) && strings.TrimSpace(raw) != "" && isJSONValue(raw) {
			return model.UncertainVerdict(NotesNotAnObject), true
		}
		return model.UncertainVerdict(NotesEmptyOrUnparseable), true
	}

	if len(obj) == 0 {
		return model.UncertainVerdict(NotesEmptyOrUnparseable), true
	}

	out := FromMap(obj)
	verdictRaw, _ := obj["verdict"].(string)
	if _, ok := model.LookupVerdict(verdictRaw); !ok {
		if out.Notes == "" {
			out.Notes = NotesValidationError
		}
		return out, true
	}
	return out, false
}

// FromMap coerces an already decoded object field by field.
//
// Conflict policy: an unknown or missing attribute becomes "other" and an unknown or
// missing severity becomes "minor", with the raw value kept in the comment. A conflict
// whose source_pair is missing or unknown is dropped.
func FromMap(m map[string]any) model.LLMVerdict {
	out := model.UncertainVerdict("")

	if v, ok := m["verdict"].(string); ok {
		out.Verdict = model.ParseVerdict(v)
	}

	if items, ok := m["conflicts"].([]any); ok {
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := conflictFromMap(obj); ok {
				out.Conflicts = append(out.Conflicts, c)
			}
		}
	}

	if items, ok := m["pair_disagreements"].([]any); ok {
		seen := map[model.SourcePair]bool{}
		for _, it := range items {
			if s, ok := it.(string); ok {
				if p := parsePair(s); p.Valid() {
					seen[p] = true
				}
			}
		}
		for _, p := range model.SourcePairs {
			if seen[p] {
				out.PairDisagreements = append(out.PairDisagreements, p)
			}
		}
	}

	if support, ok := m["support"].(map[string]any); ok {
		out.Support = support
	}

	if notes, ok := m["notes"].(string); ok {
		out.Notes = notes
	}

	return out
}

func conflictFromMap(obj map[string]any) (model.Conflict, bool) {
	pairRaw, _ := obj["source_pair"].(string)
	pair := parsePair(pairRaw)
	if !pair.Valid() {
		return model.Conflict{}, false
	}

	c := model.Conflict{
		SourcePair:       pair,
		TitleValue:       optString(obj["title_value"]),
		ImageValue:       optString(obj["image_value"]),
		DescriptionValue: optString(obj["description_value"]),
	}
	comment, _ := obj["comment"].(string)

	var notes []string

	attr := model.Attribute(normEnum(obj["attribute"]))
	if !attr.Valid() {
		notes = append(notes, "attribute="+rawString(obj["attribute"]))
		attr = model.AttributeOther
	}
	c.Attribute = attr

	sev := model.Severity(normEnum(obj["severity"]))
	if !sev.Valid() {
		notes = append(notes, "severity="+rawString(obj["severity"]))
		sev = model.SeverityMinor
	}
	c.Severity = sev

	if len(notes) > 0 {
		suffix := "[" + strings.Join(notes, ", ") + "]"
		if comment == "" {
			comment = suffix
		} else {
			comment = comment + " " + suffix
		}
	}
	c.Comment = comment

	return c, true
}

func parsePair(s string) model.SourcePair {
	return model.SourcePair(strings.ToLower(strings.TrimSpace(s)))
}

func normEnum(v any) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// rawString renders an unrecognized enum value for the comment.
func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<missing>"
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// isJSONValue reports whether s decodes as some JSON value.
func isJSONValue(s string) bool {
	_, err := common.ParseJSON[any](s)
	return err == nil
}

func clampRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
