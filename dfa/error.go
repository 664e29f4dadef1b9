package dfa

import "fmt"

// Error types for DFA construction

// ErrStateLimitExceeded indicates that subset construction reached the
// configured maximum number of DFA states.
//
// This prevents unbounded memory growth for pathological rule sets such as
// (a|b)*a(a|b){20}.
var ErrStateLimitExceeded = &DFAError{
	Kind:    StateLimitExceeded,
	Message: "DFA state limit exceeded",
}

// ErrSetTooLarge indicates that a single DFA state would fold together more
// NFA states than DeterminizationLimit allows.
var ErrSetTooLarge = &DFAError{
	Kind:    SetTooLarge,
	Message: "NFA state set exceeds determinization limit",
}

// ErrInvalidConfig indicates that the provided configuration is invalid.
var ErrInvalidConfig = &DFAError{
	Kind:    InvalidConfig,
	Message: "invalid DFA configuration",
}

// ErrNotFinished indicates a table query on an automaton whose states have
// not been numbered yet.
var ErrNotFinished = &DFAError{
	Kind:    NotFinished,
	Message: "DFA states are not numbered; call Finish first",
}

// ErrorKind classifies DFA errors into categories
type ErrorKind uint8

const (
	// StateLimitExceeded indicates too many states were created
	StateLimitExceeded ErrorKind = iota

	// SetTooLarge indicates an oversized NFA state set
	SetTooLarge

	// InvalidConfig indicates configuration validation failed
	InvalidConfig

	// NotFinished indicates a query that needs global state numbers
	NotFinished
)

// String returns a human-readable error kind name
func (k ErrorKind) String() string {
	switch k {
	case StateLimitExceeded:
		return "StateLimitExceeded"
	case SetTooLarge:
		return "SetTooLarge"
	case InvalidConfig:
		return "InvalidConfig"
	case NotFinished:
		return "NotFinished"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// DFAError represents an error that occurred during DFA construction
type DFAError struct {
	Kind    ErrorKind
	Message string
	Cause   error // Optional underlying error
}

// Error implements the error interface
func (e *DFAError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error (for errors.Is/As)
func (e *DFAError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *DFAError) Is(target error) bool {
	t, ok := target.(*DFAError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
