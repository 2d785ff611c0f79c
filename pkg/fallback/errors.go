package fallback

import "errors"

// ErrExhausted is the aggregate failure of a run in which no candidate
// produced a usable response.
var ErrExhausted = errors.New("no candidate produced a usable response")

// ExhaustedError reports a failed run. Its message is the aggregate one;
// the per-candidate outcomes are kept for logging and are not part of it.
type ExhaustedError struct {
	Outcomes []Outcome
	Cause    error // Set when the run stopped early, e.g. on cancellation.
}

func (e *ExhaustedError) Error() string {
	if e.Cause != nil {
		return ErrExhausted.Error() + ": " + e.Cause.Error()
	}
	return ErrExhausted.Error()
}

// Is reports whether target is ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Unwrap returns the cause that stopped the run early, if any.
func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}
