package syntax

import (
	"errors"
	"fmt"

	"github.com/coregx/lexgen/diag"
)

// Sentinel errors matched by errors.Is against a returned *Error.
var (
	// ErrSyntax indicates a malformed pattern.
	ErrSyntax = errors.New("regex syntax error")

	// ErrInvalidEscape indicates a malformed backslash escape.
	ErrInvalidEscape = errors.New("invalid escape sequence")

	// ErrSemantic indicates a well-formed pattern that breaks a placement
	// rule for anchors or trailing context.
	ErrSemantic = errors.New("regex semantic error")
)

// ErrorKind classifies an Error.
type ErrorKind uint8

const (
	// KindSyntax is a parse failure.
	KindSyntax ErrorKind = iota

	// KindEscape is a malformed escape sequence.
	KindEscape

	// KindSemantic is a placement error found after parsing.
	KindSemantic

	// KindWarning is a non-fatal note produced while parsing.
	KindWarning
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindEscape:
		return "escape"
	case KindSemantic:
		return "semantic"
	case KindWarning:
		return "warning"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error describes a problem at a position inside one pattern. Offset and
// Length count runes from the start of the pattern; Code is a diag code.
type Error struct {
	Kind   ErrorKind
	Code   int
	Offset int
	Length int
	Arg    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, diag.Message(e.Code, e.Arg))
}

// Unwrap returns the sentinel matching the error kind.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindSyntax:
		return ErrSyntax
	case KindEscape:
		return ErrInvalidEscape
	case KindSemantic:
		return ErrSemantic
	}
	return nil
}

// IsWarning reports whether e is a warning.
func (e *Error) IsWarning() bool {
	return e.Kind == KindWarning
}

func newError(kind ErrorKind, code, offset, length int, arg string) *Error {
	return &Error{Kind: kind, Code: code, Offset: offset, Length: max(length, 0), Arg: arg}
}
