package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse = errors.New("empty response")
	ErrNoObject      = errors.New("no JSON object found in response")
)

// ParseJSON cleans and unmarshals a JSON string into a type T.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	if strings.TrimSpace(response) == "" {
		return zero, ErrEmptyResponse
	}

	var result T
	if err := json.Unmarshal([]byte(response), &result); err == nil {
		return result, nil
	}

	// Fall back to the outermost '{' .. '}' span
	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end <= start {
		return zero, ErrNoObject
	}

	jsonStr := response[start : end+1]
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}

// ParseObject extracts a JSON object from model output as a generic map.
// A payload that is valid JSON but not an object (array, string, null) yields ErrNoObject.
func ParseObject(response string) (map[string]any, error) {
	raw, err := ParseJSON[any](response)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNoObject
	}
	return obj, nil
}
