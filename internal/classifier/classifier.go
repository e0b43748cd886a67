// Package classifier turns free text into a structured intent guess.
//
// The model behind HTTPClient is an external collaborator; this package
// only checks that what it returns has the expected shape (against an
// embedded CUE schema) and converts it into a typed action payload. It
// never judges whether the guess is sensible: that is the validator's job.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tally/internal/action"
)

// Request is what the classifier sees.
type Request struct {
	Text   string
	Locale string

	// ItemNames is the owner's catalog, so the model can map spellings
	// onto known items.
	ItemNames []string
}

// Intent is the classifier's structured guess.
type Intent struct {
	IsAction   bool
	Payload    action.Payload
	Confidence float64
	Reason     string
}

// Kind returns the kind of the guessed payload.
func (i Intent) Kind() action.Kind {
	return action.KindOf(i.Payload)
}

// Classifier maps free text to an Intent.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Intent, error)
}

// ClassificationError means the classifier answered, but not in the
// expected shape.
type ClassificationError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return "classification failed: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// IsClassificationError reports whether err is (or wraps) a ClassificationError.
func IsClassificationError(err error) bool {
	var ce *ClassificationError
	return errors.As(err, &ce)
}
