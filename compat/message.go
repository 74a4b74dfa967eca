package compat

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

const (
	CompatibleMessage    = "💞 Couple is compatible!"
	NotCompatibleMessage = "💔 Couple is not compatible."
	ErrorMessage         = "Error during prediction"
	ConsolationMessage   = "💔 Better luck next time!"
)

// MessageFor maps a model label to its verdict text.
func MessageFor(label int) string {
	if label == 1 {
		return CompatibleMessage
	}
	return NotCompatibleMessage
}

// Celebrate reports whether message earns the celebration cue: it contains
// "compatible" in any letter case. Both verdicts match; ErrorMessage does not.
func Celebrate(message string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(message), fold.String("compatible"))
}

// Result is the user-facing outcome of one submission.
type Result struct {
	Label     *int          `json:"label,omitempty"`
	Message   string        `json:"message"`
	Celebrate bool          `json:"celebrate"`
	Features  FeatureVector `json:"features"`
	Error     string        `json:"error,omitempty"`
}

// Present turns a verdict or prediction failure into one of the three
// user-visible outcomes. Errors other than *PredictionError are returned
// unchanged for the caller to handle.
func Present(verdict Verdict, err error) (Result, error) {
	if err != nil {
		var predictionErr *PredictionError
		if !errors.As(err, &predictionErr) {
			return Result{}, err
		}
		return Result{
			Message:   ErrorMessage,
			Celebrate: Celebrate(ErrorMessage),
			Features:  verdict.Features,
			Error:     "Prediction error: " + predictionErr.Err.Error(),
		}, nil
	}
	label := verdict.Label
	return Result{
		Label:     &label,
		Message:   verdict.Message,
		Celebrate: Celebrate(verdict.Message),
		Features:  verdict.Features,
	}, nil
}
