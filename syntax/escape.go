package syntax

import (
	"unicode"
	"unicode/utf16"
)

// decodeEscape decodes the escape sequence whose backslash precedes src[i].
// It returns the code point and the index just past the sequence; ok is
// false for a malformed sequence.
//
// Recognized forms: \a \b \f \n \r \t \v, \\, \0 not followed by an octal
// digit, three octal digits starting 0-3, \x and \X with two hex digits, \u
// with four and \U with eight. Any other character stands for itself.
func decodeEscape(src []rune, i int) (r rune, next int, ok bool) {
	if i >= len(src) {
		return 0, i, false
	}
	switch c := src[i]; c {
	case 'a':
		return '\a', i + 1, true
	case 'b':
		return '\b', i + 1, true
	case 'f':
		return '\f', i + 1, true
	case 'n':
		return '\n', i + 1, true
	case 'r':
		return '\r', i + 1, true
	case 't':
		return '\t', i + 1, true
	case 'v':
		return '\v', i + 1, true
	case '0', '1', '2', '3':
		if c == '0' && (i+1 >= len(src) || !isOctal(src[i+1])) {
			return 0, i + 1, true
		}
		return decodeDigits(src, i, 3, 8)
	case 'x', 'X':
		return decodeDigits(src, i+1, 2, 16)
	case 'u':
		return decodeDigits(src, i+1, 4, 16)
	case 'U':
		r, next, ok := decodeDigits(src, i+1, 8, 16)
		if ok && r > unicode.MaxRune {
			return 0, next, false
		}
		return r, next, ok
	default:
		return c, i + 1, true
	}
}

func decodeDigits(src []rune, i, count, base int) (rune, int, bool) {
	if i+count > len(src) {
		return 0, len(src), false
	}
	var v rune
	for _, c := range src[i : i+count] {
		d := digitValue(c)
		if d < 0 || d >= base {
			return 0, i + count, false
		}
		v = v*rune(base) + rune(d)
	}
	return v, i + count, true
}

func digitValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isOctal(c rune) bool {
	return '0' <= c && c <= '7'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// interpretString decodes the body of a quoted literal. Escaped UTF-16
// surrogate pairs are combined into one code point. On failure it returns
// the offset and length of the bad escape.
func interpretString(src []rune) (out []rune, badAt, badLen int, ok bool) {
	out = make([]rune, 0, len(src))
	for i := 0; i < len(src); {
		if src[i] != '\\' {
			out = append(out, src[i])
			i++
			continue
		}
		r, next, good := decodeEscape(src, i+1)
		if !good {
			return nil, i, next - i, false
		}
		out = append(out, r)
		i = next
	}
	return combineSurrogates(out), 0, 0, true
}

func combineSurrogates(rs []rune) []rune {
	out := rs[:0]
	for i := 0; i < len(rs); i++ {
		if i+1 < len(rs) && utf16.IsSurrogate(rs[i]) {
			if c := utf16.DecodeRune(rs[i], rs[i+1]); c != unicode.ReplacementChar {
				out = append(out, c)
				i++
				continue
			}
		}
		out = append(out, rs[i])
	}
	return out
}
