package naming

import (
	"path"
	"strings"
)

// TypeHint carries the raw material a type name can be derived from.
type TypeHint struct {
	// Hint is the name proposed by the generator (definition key, property
	// name, generic type syntax). Takes precedence when non-empty.
	Hint string
	// Title is the schema's own title, used when no hint is supplied.
	Title string
	// DocumentPath is the schema's file path or URL, used when neither a
	// hint nor a title is available.
	DocumentPath string
}

// TypeNamePolicy produces PascalCase type names.
type TypeNamePolicy struct {
	resolver *Resolver
}

// NewTypeNamePolicy returns a policy backed by resolver. A nil resolver uses
// the default reserved words and no mappings.
func NewTypeNamePolicy(resolver *Resolver) *TypeNamePolicy {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &TypeNamePolicy{resolver: resolver}
}

var genericReplacer = strings.NewReplacer(
	"[", " Of ",
	"]", " ",
	"<", " Of ",
	">", " ",
	",", " And ",
)

// Generate derives a type name and reserves it in scope.
func (p *TypeNamePolicy) Generate(hint TypeHint, scope *Scope) string {
	raw := strings.TrimSpace(hint.Hint)
	if raw == "" {
		if title := strings.TrimSpace(hint.Title); title != "" {
			raw = title
		} else if hint.DocumentPath != "" {
			raw = documentStem(hint.DocumentPath)
		}
	}

	raw = genericReplacer.Replace(raw)
	raw = strings.ReplaceAll(raw, "  ", " ")

	var b strings.Builder
	for _, part := range strings.Split(raw, " ") {
		b.WriteString(UpperCamel(lastSegment(part)))
	}

	name := p.resolver.Resolve(b.String(), scope)
	return commit(p.resolver, name, scope, CasingPascal)
}

// Resolver exposes the resolver backing the policy.
func (p *TypeNamePolicy) Resolver() *Resolver {
	return p.resolver
}

// commit sanitizes a resolved name, applies the final casing pass, renumbers
// it if casing produced a collision and reserves the result.
func commit(r *Resolver, name string, scope *Scope, casing Casing) string {
	clean, err := Sanitize(name)
	if err != nil || clean == "" {
		clean, _ = Sanitize(r.Resolve("", scope))
	}
	clean = casing.finish(clean)
	if r.Taken(clean, scope) {
		clean = r.numbered(clean, scope)
	}
	scope.Reserve(clean)
	return clean
}

func lastSegment(value string) string {
	if idx := strings.LastIndexByte(value, '.'); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

// documentStem returns the final path segment without the ".json" extension
// and the ".schema" marker, so "defs/person.schema.json" yields "person".
func documentStem(documentPath string) string {
	normalized := strings.ReplaceAll(documentPath, "\\", "/")
	if idx := strings.IndexAny(normalized, "?#"); idx >= 0 {
		normalized = normalized[:idx]
	}
	base := path.Base(normalized)
	if base == "." || base == "/" {
		return ""
	}
	lower := strings.ToLower(base)
	if strings.HasSuffix(lower, ".json") {
		base = base[:len(base)-len(".json")]
		lower = lower[:len(lower)-len(".json")]
	}
	if strings.HasSuffix(lower, ".schema") {
		base = base[:len(base)-len(".schema")]
	}
	return base
}

// DocumentStem exposes the file stem rule used for document-derived hints.
func DocumentStem(documentPath string) string {
	return documentStem(documentPath)
}
