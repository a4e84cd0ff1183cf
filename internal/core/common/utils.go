package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals a JSON string into a type T.
// It handles common LLM quirks like surrounding markdown fences or extra
// prose, and salvages either an object or an array payload.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr, err := extractPayload(response)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

func extractPayload(response string) (string, error) {
	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	start := objStart
	closer := byte('}')
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		start = arrStart
		closer = ']'
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON payload found in response")
	}

	end := strings.LastIndexByte(response, closer)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON payload in response")
	}

	return response[start : end+1], nil
}
