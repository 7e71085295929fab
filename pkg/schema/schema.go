package schema

import (
	"net/url"
	"sort"
	"strings"
)

// Schema is the parsed, format-neutral view of one JSON Schema node that the
// code generators consume. References stay symbolic: Ref holds the canonical
// key of an entry in the owning Set's Definitions.
type Schema struct {
	Ref                  string
	Type                 string
	Nullable             bool
	Format               string
	Title                string
	Description          string
	Default              any
	Enum                 []any
	Const                any
	Required             []string
	Properties           map[string]Schema
	AdditionalProperties *Schema
	Items                *Schema
	OneOf                []Schema
	AnyOf                []Schema
	AllOf                []Schema
	Deprecated           bool
	ReadOnly             bool
	Extensions           map[string]any
}

// IsRequired reports whether name is listed in Required.
func (s Schema) IsRequired(name string) bool {
	for _, item := range s.Required {
		if item == name {
			return true
		}
	}
	return false
}

// IsObject reports whether the node describes an object with members.
func (s Schema) IsObject() bool {
	return s.Type == "object" || (s.Type == "" && len(s.Properties) > 0)
}

// IsEnum reports whether the node restricts values to a fixed list.
func (s Schema) IsEnum() bool {
	return len(s.Enum) > 0
}

// PropertyNames returns property keys in sorted order.
func (s Schema) PropertyNames() []string {
	if len(s.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set is one parsed schema document: an optional root type plus every
// definition reachable from it, local or bundled from external documents.
type Set struct {
	// DocumentPath is the location of the document the set was parsed from.
	DocumentPath string
	// Root is nil when the document only carries definitions (OpenAPI
	// components, definition-only JSON Schema files).
	Root *Schema
	// Definitions maps canonical ref keys such as "#/$defs/Address" or
	// "common.json#/definitions/Id" to their schemas.
	Definitions map[string]Schema
}

// NewSet returns an empty set for documentPath.
func NewSet(documentPath string) *Set {
	return &Set{
		DocumentPath: documentPath,
		Definitions:  make(map[string]Schema),
	}
}

// Definition looks up a definition by canonical ref.
func (s *Set) Definition(ref string) (Schema, bool) {
	if s == nil || s.Definitions == nil {
		return Schema{}, false
	}
	def, ok := s.Definitions[ref]
	return def, ok
}

// DefinitionKeys returns the definition refs in sorted order.
func (s *Set) DefinitionKeys() []string {
	if s == nil || len(s.Definitions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Definitions))
	for key := range s.Definitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DefinitionName derives a name hint from a canonical ref: the last JSON
// pointer segment, or the document stem for whole-document refs.
// "#/$defs/Line%20Item" yields "Line Item"; "common/money.schema.json#"
// yields "money".
func DefinitionName(ref string) string {
	docPart, fragment := SplitRef(ref)
	fragment = strings.TrimPrefix(fragment, "/")
	if fragment != "" {
		segment := fragment
		if idx := strings.LastIndexByte(fragment, '/'); idx >= 0 {
			segment = fragment[idx+1:]
		}
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		return strings.ReplaceAll(segment, "~0", "~")
	}
	docPart = strings.ReplaceAll(docPart, "\\", "/")
	if idx := strings.LastIndexByte(docPart, '/'); idx >= 0 {
		docPart = docPart[idx+1:]
	}
	for _, suffix := range []string{".json", ".schema"} {
		if len(docPart) > len(suffix) && strings.EqualFold(docPart[len(docPart)-len(suffix):], suffix) {
			docPart = docPart[:len(docPart)-len(suffix)]
		}
	}
	return docPart
}

// SplitRef separates the document and fragment parts of a ref.
func SplitRef(ref string) (string, string) {
	parts := strings.SplitN(ref, "#", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
