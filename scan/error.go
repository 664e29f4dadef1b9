package scan

import "errors"

var (
	// ErrUnknownStartState is returned when switching to a start condition
	// the tables do not define.
	ErrUnknownStartState = errors.New("scan: unknown start state")

	// ErrUnknownPredicate is returned when querying a character-class
	// predicate the tables do not define.
	ErrUnknownPredicate = errors.New("scan: unknown predicate")
)
