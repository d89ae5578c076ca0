// Package solvererr defines the solver's error taxonomy: a small, closed
// set of kinds the HTTP layer maps to status codes, rather than
// string-matching error messages the way the teacher's handlers do.
package solvererr

// Kind is one of the four error kinds the solver ever reports.
type Kind string

const (
	// TooFewLetters: the hand has fewer than 2 tiles.
	TooFewLetters Kind = "TooFewLetters"
	// LetterCountExceedsAvailable: caller supplied more of a letter than
	// the physical 144-tile bag allows.
	LetterCountExceedsAvailable Kind = "LetterCountExceedsAvailable"
	// NoSolution: search exhausted within the iteration cap. Not
	// exceptional - a valid terminal outcome.
	NoSolution Kind = "NoSolution"
	// InvalidConfiguration: settings out of range (negative, or >= 2^32).
	InvalidConfiguration Kind = "InvalidConfiguration"
)

// Error is the solver's single error type. Kind selects the category;
// Detail carries a human-readable, caller-safe explanation.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// New constructs an *Error with the given kind and detail.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// As reports whether err is a *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	se, ok := err.(*Error)
	return se, ok
}
