package naming

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Casing selects how a member name is cased for the target language.
type Casing string

const (
	CasingPascal    Casing = "pascal"
	CasingCamel     Casing = "camel"
	CasingSnake     Casing = "snake"
	CasingScreaming Casing = "screaming"
	CasingPreserve  Casing = "preserve"
)

// ParseCasing validates a casing name. The empty string maps to fallback.
func ParseCasing(raw string, fallback Casing) (Casing, error) {
	value := Casing(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return fallback, nil
	case CasingPascal, CasingCamel, CasingSnake, CasingScreaming, CasingPreserve:
		return value, nil
	default:
		return "", fmt.Errorf("naming: unknown casing %q", raw)
	}
}

// prepare shapes a raw hint before collision resolution.
func (c Casing) prepare(hint string) string {
	switch c {
	case CasingPascal:
		return UpperCamel(hint)
	case CasingCamel:
		return lowerFirst(UpperCamel(hint))
	case CasingSnake:
		return strings.ToLower(strings.Join(splitWords(hint), "_"))
	case CasingScreaming:
		return strings.ToUpper(strings.Join(splitWords(hint), "_"))
	default:
		return hint
	}
}

// finish applies the final normalization to a sanitized identifier.
func (c Casing) finish(name string) string {
	switch c {
	case CasingPascal:
		return SnakeToPascal(name)
	case CasingCamel:
		return lowerFirst(SnakeToPascal(name))
	default:
		return name
	}
}

// UpperCamel upper-cases the first character, turns spaces and slashes into
// underscores and removes dashes, upper-casing the character after each one.
// Other characters are left untouched: "first-name" becomes "FirstName",
// "fooBar" becomes "FooBar".
func UpperCamel(input string) string {
	if input == "" {
		return ""
	}
	input = upperFirst(input)

	var b strings.Builder
	b.Grow(len(input))
	upperNext := false
	for _, r := range input {
		switch {
		case r == '-':
			upperNext = true
			continue
		case r == ' ' || r == '/':
			b.WriteByte('_')
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		upperNext = false
	}
	return b.String()
}

// SnakeToPascal joins underscore separated parts, upper-casing the first
// letter of each. A result that would start with a digit keeps a leading
// underscore so it remains a legal identifier.
func SnakeToPascal(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, part := range strings.Split(input, "_") {
		if part == "" {
			continue
		}
		b.WriteString(upperFirst(part))
	}
	out := b.String()
	if out == "" {
		return input
	}
	if r, _ := utf8.DecodeRuneInString(out); isDigit(r) {
		return "_" + out
	}
	return out
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// splitWords breaks a hint on separators and on lower-to-upper transitions.
// "HTTPServer" yields [HTTP Server], "first_name" yields [first name].
func splitWords(input string) []string {
	runes := []rune(input)
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' || r == '/' {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}
