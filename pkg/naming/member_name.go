package naming

import (
	"math"
	"strconv"
	"strings"
)

var memberReplacer = strings.NewReplacer(
	"\"", "",
	"@", "",
	"?", "",
	"$", "",
	"[", "",
	"]", "",
	"(", "",
	")", "",
	".", "-",
	"=", "-",
	"+", "Plus",
	"*", "Star",
)

// PropertyNamePolicy names class members after their JSON property keys.
type PropertyNamePolicy struct {
	resolver *Resolver
	casing   Casing
}

// NewPropertyNamePolicy returns a property policy with the given casing.
func NewPropertyNamePolicy(resolver *Resolver, casing Casing) *PropertyNamePolicy {
	if resolver == nil {
		resolver = NewResolver()
	}
	if casing == "" {
		casing = CasingPascal
	}
	return &PropertyNamePolicy{resolver: resolver, casing: casing}
}

// Casing reports the configured casing rule.
func (p *PropertyNamePolicy) Casing() Casing {
	return p.casing
}

// Generate derives the member name for a JSON property key and reserves it
// in scope, which is expected to be the owning type's member scope.
func (p *PropertyNamePolicy) Generate(jsonName string, scope *Scope) string {
	hint := p.casing.prepare(memberReplacer.Replace(strings.TrimSpace(jsonName)))
	name := p.resolver.Resolve(hint, scope)
	return commit(p.resolver, name, scope, p.casing)
}

// EnumNamePolicy names enum members after their values.
type EnumNamePolicy struct {
	resolver *Resolver
	casing   Casing
}

// NewEnumNamePolicy returns an enum member policy with the given casing.
func NewEnumNamePolicy(resolver *Resolver, casing Casing) *EnumNamePolicy {
	if resolver == nil {
		resolver = NewResolver()
	}
	if casing == "" {
		casing = CasingPascal
	}
	return &EnumNamePolicy{resolver: resolver, casing: casing}
}

// Casing reports the configured casing rule.
func (p *EnumNamePolicy) Casing() Casing {
	return p.casing
}

// Generate derives the member name for an enum value and reserves it in
// scope, which is expected to be the enum's member scope.
func (p *EnumNamePolicy) Generate(value any, scope *Scope) string {
	hint := p.casing.prepare(memberReplacer.Replace(EnumHint(value)))
	name := p.resolver.Resolve(hint, scope)
	return commit(p.resolver, name, scope, p.casing)
}

// EnumHint renders an enum value as a name hint. Numbers become "_<n>" (or
// "Minus<n>" when negative), an empty string becomes "Empty".
func EnumHint(value any) string {
	switch v := value.(type) {
	case nil:
		return "Null"
	case string:
		if strings.TrimSpace(v) == "" {
			return "Empty"
		}
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return numberHint(v)
	case float32:
		return numberHint(float64(v))
	case int:
		return numberHint(float64(v))
	case int64:
		return numberHint(float64(v))
	default:
		return ""
	}
}

func numberHint(v float64) string {
	prefix := "_"
	if v < 0 {
		prefix = "Minus"
		v = -v
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return prefix + strconv.FormatInt(int64(v), 10)
	}
	return prefix + strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", "_")
}
