package compat

import (
	"fmt"
	"sort"
	"strings"
)

// PredictionError wraps any failure of the classifier while scoring a vector.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// InputError lists form fields whose values fall outside their control's
// domain, keyed by field name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
