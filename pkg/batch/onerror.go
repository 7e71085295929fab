package batch

import (
	"fmt"
	"strings"
)

// OnError selects how the driver reacts to a per-file failure.
type OnError string

const (
	// OnErrorPrompt asks the operator whether to skip the file and continue.
	OnErrorPrompt OnError = "prompt"
	// OnErrorStop aborts the run.
	OnErrorStop OnError = "stop"
	// OnErrorSkip logs the failure and continues with the next file.
	OnErrorSkip OnError = "skip"
)

// OnErrorValues lists the accepted policy names.
var OnErrorValues = []string{string(OnErrorPrompt), string(OnErrorStop), string(OnErrorSkip)}

// ParseOnError parses a policy name. Matching is case-insensitive; an empty
// value yields fallback.
func ParseOnError(raw string, fallback OnError) (OnError, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return fallback, nil
	}
	switch OnError(value) {
	case OnErrorPrompt, OnErrorStop, OnErrorSkip:
		return OnError(value), nil
	default:
		return "", fmt.Errorf("batch: unknown on-error policy %q (want one of %s)", raw, strings.Join(OnErrorValues, ", "))
	}
}
