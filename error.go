package lexgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/lexgen/diag"
)

var (
	// ErrInvalidOptions is returned for an unknown or inconsistent option.
	ErrInvalidOptions = errors.New("lexgen: invalid options")

	// ErrHasErrors is returned by Compile when the specification has
	// errors. The diagnostics are carried by a *CompileError.
	ErrHasErrors = errors.New("lexgen: specification has errors")
)

// OptionsError represents an invalid option value or word.
type OptionsError struct {
	// Field is the option name, or the %option word as written.
	Field   string
	Message string

	// Code is the diagnostic code reported for the problem in a
	// specification.
	Code int
}

// Error implements the error interface.
func (e *OptionsError) Error() string {
	return "lexgen: invalid option: " + e.Field + ": " + e.Message
}

// Unwrap returns ErrInvalidOptions.
func (e *OptionsError) Unwrap() error {
	return ErrInvalidOptions
}

// CompileError is returned by Compile when a specification cannot be turned
// into tables. Diagnostics holds everything reported up to that point,
// warnings included.
type CompileError struct {
	Diagnostics []diag.Diagnostic
	Err         error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var errs []string
	for _, d := range e.Diagnostics {
		if !d.IsWarning() {
			errs = append(errs, d.Error())
		}
	}
	switch len(errs) {
	case 0:
		return e.Err.Error()
	case 1:
		return fmt.Sprintf("%v: %s", e.Err, errs[0])
	default:
		return fmt.Sprintf("%v: %s (and %d more)", e.Err, errs[0], len(errs)-1)
	}
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Errors returns the error diagnostics, one per line.
func (e *CompileError) Errors() string {
	var b strings.Builder
	for _, d := range e.Diagnostics {
		if d.IsWarning() {
			continue
		}
		b.WriteString(d.Error())
		b.WriteByte('\n')
	}
	return b.String()
}
