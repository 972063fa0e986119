package classify

import "errors"

var (
	// ErrModelUnavailable is returned when no model artifact has been
	// loaded yet. Callers should treat it as retryable.
	ErrModelUnavailable = errors.New("model not loaded")

	// ErrNoLetterLabels reports an artifact whose label set contains no
	// A-Z letters, so the letter restriction has nothing to select from.
	ErrNoLetterLabels = errors.New("model labels contain no letters")
)
