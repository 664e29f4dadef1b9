// Package diag collects the numbered diagnostics produced while a scanner
// specification is compiled.
//
// Every diagnostic carries a code. Codes from MinError up to MinWarning-1
// are errors; codes from MinWarning upward are warnings. A Handler keeps a
// running count and refuses further errors once DefaultMaxErrors is passed,
// which is the only way a compilation is abandoned early.
package diag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Code ranges and limits.
const (
	// MinError is the smallest code used for a reported error.
	MinError = 50

	// MinWarning is the smallest code used for a warning.
	MinWarning = 110

	// DefaultMaxErrors is the error ceiling used by NewHandler(0).
	DefaultMaxErrors = 50

	// CodeTooManyErrors is recorded once when the ceiling is exceeded.
	CodeTooManyErrors = 2

	// CodeInternal marks an internal invariant failure.
	CodeInternal = 3
)

// ErrTooManyErrors is returned by Handler.Report once the error ceiling has
// been exceeded. Callers must stop processing the specification.
var ErrTooManyErrors = errors.New("too many errors, abandoning")

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError marks a diagnostic that makes the specification invalid.
	SeverityError Severity = iota

	// SeverityWarning marks a diagnostic that does not stop table generation.
	SeverityWarning
)

// String returns a lowercase name for the severity.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// SeverityOf returns the severity implied by a diagnostic code.
func SeverityOf(code int) Severity {
	if code >= MinWarning {
		return SeverityWarning
	}
	return SeverityError
}

// Span locates a diagnostic in the specification text.
// Line and Column are 1-based; the zero Span means "no position".
type Span struct {
	Line   int
	Column int
	Offset int
	Length int
}

// IsValid reports whether the span carries a position.
func (s Span) IsValid() bool {
	return s.Line > 0
}

// Sub returns the part of a single-line span that starts offset runes into
// it and is length runes long. It is used to point inside a pattern.
func (s Span) Sub(offset, length int) Span {
	if !s.IsValid() {
		return s
	}
	return Span{
		Line:   s.Line,
		Column: s.Column + offset,
		Offset: s.Offset + offset,
		Length: length,
	}
}

// String formats the span as "line:column".
func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Diagnostic is one numbered error or warning.
type Diagnostic struct {
	Code     int
	Severity Severity
	Span     Span
	Message  string
}

// Error implements the error interface so a Diagnostic can be returned
// directly from functions that detect a single problem.
func (d Diagnostic) Error() string {
	var b strings.Builder
	if d.Span.IsValid() {
		b.WriteString(d.Span.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %d: %s", d.Severity, d.Code, d.Message)
	return b.String()
}

// IsWarning reports whether the diagnostic is a warning.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// Handler accumulates diagnostics for one compilation.
// A Handler is not safe for concurrent use.
type Handler struct {
	maxErrors int
	list      []Diagnostic
	errors    int
	warnings  int
	abandoned bool
}

// NewHandler returns a Handler that abandons after maxErrors errors.
// A non-positive maxErrors selects DefaultMaxErrors.
func NewHandler(maxErrors int) *Handler {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Handler{maxErrors: maxErrors}
}

// Report records the diagnostic for code at span. arg fills the code's
// message template and may be empty. Report returns ErrTooManyErrors when
// this error pushed the count past the ceiling, or the handler had already
// given up; otherwise it returns nil.
func (h *Handler) Report(code int, span Span, arg string) error {
	return h.Add(Diagnostic{
		Code:     code,
		Severity: SeverityOf(code),
		Span:     span,
		Message:  Message(code, arg),
	})
}

// Add records a fully formed diagnostic. See Report for the return value.
func (h *Handler) Add(d Diagnostic) error {
	if h.abandoned {
		return ErrTooManyErrors
	}
	h.list = append(h.list, d)
	if d.Severity == SeverityWarning {
		h.warnings++
		return nil
	}
	h.errors++
	if h.errors > h.maxErrors {
		h.abandoned = true
		h.list = append(h.list, Diagnostic{
			Code:     CodeTooManyErrors,
			Severity: SeverityError,
			Span:     d.Span,
			Message:  Message(CodeTooManyErrors, ""),
		})
		return ErrTooManyErrors
	}
	return nil
}

// HasErrors reports whether any error (not warning) was recorded.
func (h *Handler) HasErrors() bool {
	return h.errors > 0
}

// ErrorCount returns the number of errors recorded.
func (h *Handler) ErrorCount() int { return h.errors }

// WarningCount returns the number of warnings recorded.
func (h *Handler) WarningCount() int { return h.warnings }

// Abandoned reports whether the error ceiling was exceeded.
func (h *Handler) Abandoned() bool { return h.abandoned }

// Diagnostics returns a copy of the recorded diagnostics sorted by line and
// then column. Diagnostics at the same position keep their report order,
// and unpositioned ones sort first.
func (h *Handler) Diagnostics() []Diagnostic {
	out := slices.Clone(h.list)
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		if a.Span.Line != b.Span.Line {
			return a.Span.Line - b.Span.Line
		}
		return a.Span.Column - b.Span.Column
	})
	return out
}

// Has reports whether a diagnostic with code was recorded.
func (h *Handler) Has(code int) bool {
	return slices.ContainsFunc(h.list, func(d Diagnostic) bool { return d.Code == code })
}
