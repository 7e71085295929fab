package naming

import (
	"errors"
	"strings"
)

// ErrEmptyHint is returned when an empty string reaches Sanitize. Callers are
// expected to substitute a fallback before sanitizing.
var ErrEmptyHint = errors.New("naming: hint is empty")

// Sanitize replaces every character that is not an ASCII letter, digit or
// underscore with an underscore. A leading digit keeps its value and gets an
// underscore prepended; any other illegal leading character is replaced.
// Underscore runs collapse to one and trailing underscores are removed.
//
// The result may be empty when the hint holds nothing but illegal characters.
func Sanitize(hint string) (string, error) {
	if hint == "" {
		return "", ErrEmptyHint
	}

	runes := []rune(hint)
	var b strings.Builder
	b.Grow(len(hint) + 1)

	first := runes[0]
	switch {
	case isIdentStart(first):
		b.WriteRune(first)
	case isDigit(first):
		b.WriteByte('_')
		b.WriteRune(first)
	default:
		b.WriteByte('_')
	}

	for _, r := range runes[1:] {
		if isIdentPart(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}

	return strings.TrimRight(collapseUnderscores(b.String()), "_"), nil
}

// IsIdentifier reports whether value matches ^[A-Za-z_][A-Za-z0-9_]*$.
func IsIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for i, r := range value {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func collapseUnderscores(value string) string {
	if !strings.Contains(value, "__") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	prev := false
	for _, r := range value {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return isLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '_'
}
