package diag

import (
	"fmt"
	"strings"
)

// Diagnostic codes. Codes below MinWarning are errors.
const (
	CodeParse = 1

	CodeStartStateDefined   = 50
	CodeStartStateUndefined = 51
	CodeCategoryDefined     = 52
	CodeExpectedChar        = 53
	CodeInvalidRange        = 54
	CodeUnknownCategory     = 55
	CodeBarOnLastRule       = 59
	CodeAnchorPosition      = 69
	CodeCategoryNotClass    = 71
	CodeUnknownOption       = 74
	CodeVariableContext     = 75
	CodeUnknownPredicate    = 76
	CodeMinusNotEscaped     = 82
	CodeUnicodeInconsistent = 83
	CodeOptionInconsistent  = 84
	CodeLiteralTooLarge     = 85
	CodeIllegalEscape       = 99
	CodeContextWithAnchor   = 100
	CodeExtraCharacters     = 101
	CodeRepeatTooLarge      = 104
	CodeMultipleContext     = 107

	CodeLeadingMinus    = 113
	CodeOpenRange       = 114
	CodeMightLoop       = 115
	CodeNeverMatched    = 116
	CodeAlwaysOverrides = 117
	CodeEmptyClass      = 121
)

type template struct {
	prefix, suffix string
	lq, rq         string
}

// keyed messages embed an argument, usually a name or a pattern.
var keyed = map[int]template{
	CodeParse:               {"Parser error", "", "<", ">"},
	CodeStartStateDefined:   {"Start state", "already defined", "<", ">"},
	CodeStartStateUndefined: {"Start state", "undefined", "<", ">"},
	CodeCategoryDefined:     {"Lexical category", "already defined", "<", ">"},
	CodeExpectedChar:        {"Expected character", "", "'", "'"},
	CodeUnknownCategory:     {"Unknown lexical category", "", "<", ">"},
	CodeCategoryNotClass:    {"Lexical category must be a character class", "", "<", ">"},
	CodeUnknownOption:       {`Unrecognized "%option" command`, "", "<", ">"},
	CodeUnknownPredicate:    {"Unknown character predicate", "", "<", ">"},
	CodeUnicodeInconsistent: {"Cannot set unicode option inconsistently", "", "<", ">"},
	CodeOptionInconsistent:  {`Inconsistent "%option" command`, "", "<", ">"},
	CodeLiteralTooLarge:     {"Unicode literal too large:", "use %option unicode", "<", ">"},
	CodeIllegalEscape:       {"Illegal escape sequence", "", "<", ">"},
	CodeLeadingMinus:        {"Special case:", "included as set class member", `"`, `"`},
	CodeOpenRange:           {"No upper bound to range,", "included as set class members", `"`, `"`},
	CodeNeverMatched:        {"This pattern always overridden by", "", `"`, `"`},
	CodeAlwaysOverrides:     {"This pattern always overrides", "", `"`, `"`},
	CodeEmptyClass:          {"char class", "is empty and never matched", "<", ">"},
}

var plain = map[int]string{
	CodeTooManyErrors:     "Too many errors, abandoning",
	CodeInternal:          "Internal error",
	CodeInvalidRange:      "Invalid character range: lower bound > upper bound",
	CodeBarOnLastRule:     `"next" action '|' cannot be used on last pattern`,
	CodeAnchorPosition:    "Symbols '^' and '$' can only occur at the ends of patterns",
	CodeVariableContext:   "Context must have fixed right length or fixed left length",
	CodeMinusNotEscaped:   `Invalid class character: '-' must be \escaped`,
	CodeContextWithAnchor: "Context operator cannot be used with right anchor '$'",
	CodeExtraCharacters:   "Extra characters at end of regular expression",
	CodeRepeatTooLarge:    "Repetition count too large",
	CodeMultipleContext:   "Only one context operator '/' is allowed in a pattern",
	CodeMightLoop:         `This pattern matches "", and might loop`,
	CodeNeverMatched:      "This pattern is never matched",
}

// Message renders the text for code. A keyed template is used when arg is
// non-empty, the plain message otherwise.
func Message(code int, arg string) string {
	if arg != "" {
		if t, ok := keyed[code]; ok {
			return joinWords(t.prefix, t.lq+arg+t.rq, t.suffix)
		}
	}
	if m, ok := plain[code]; ok {
		if arg != "" {
			return m + ": " + arg
		}
		return m
	}
	if t, ok := keyed[code]; ok {
		return joinWords(t.prefix, t.suffix)
	}
	if arg != "" {
		return fmt.Sprintf("Error %d: %s", code, arg)
	}
	return fmt.Sprintf("Error %d", code)
}

func joinWords(words ...string) string {
	parts := words[:0:0]
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}
