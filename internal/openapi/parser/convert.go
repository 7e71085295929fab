package parser

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// convertRef maps a nested schema ref. Named refs stay symbolic so recursive
// components terminate.
func convertRef(ref *openapi3.SchemaRef) schema.Schema {
	if ref == nil {
		return schema.Schema{}
	}
	if ref.Ref != "" {
		return schema.Schema{Ref: ref.Ref}
	}
	return convertValue(ref)
}

// convertValue maps the schema body of ref, ignoring ref.Ref. Used for the
// component entries themselves.
func convertValue(ref *openapi3.SchemaRef) schema.Schema {
	if ref == nil || ref.Value == nil {
		return schema.Schema{}
	}
	src := ref.Value
	typ, nullable := schemaType(src.Type)
	out := schema.Schema{
		Type:        typ,
		Nullable:    nullable || src.Nullable,
		Format:      src.Format,
		Title:       strings.TrimSpace(src.Title),
		Description: src.Description,
		Default:     src.Default,
		Deprecated:  src.Deprecated,
		ReadOnly:    src.ReadOnly,
		Extensions:  extractExtensions(src.Extensions),
	}

	for _, value := range src.Enum {
		if value == nil {
			out.Nullable = true
			continue
		}
		out.Enum = append(out.Enum, value)
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if len(src.Properties) > 0 {
		out.Properties = make(map[string]schema.Schema, len(src.Properties))
		for name, property := range src.Properties {
			out.Properties[name] = convertRef(property)
		}
	}
	if src.Items != nil {
		items := convertRef(src.Items)
		out.Items = &items
	}
	if src.AdditionalProperties.Schema != nil {
		extra := convertRef(src.AdditionalProperties.Schema)
		out.AdditionalProperties = &extra
	} else if has := src.AdditionalProperties.Has; has != nil && *has && len(out.Properties) == 0 && out.Type == "object" {
		out.AdditionalProperties = &schema.Schema{}
	}
	out.AllOf = convertRefs(src.AllOf)
	out.OneOf = convertRefs(src.OneOf)
	out.AnyOf = convertRefs(src.AnyOf)
	if out.Type == "" && out.Items != nil {
		out.Type = "array"
	}
	return out
}

func convertRefs(refs openapi3.SchemaRefs) []schema.Schema {
	if len(refs) == 0 {
		return nil
	}
	out := make([]schema.Schema, 0, len(refs))
	for _, ref := range refs {
		out = append(out, convertRef(ref))
	}
	return out
}

// schemaType returns the single non-null type and whether "null" was listed.
func schemaType(types *openapi3.Types) (string, bool) {
	if types == nil {
		return "", false
	}
	nullable := false
	var values []string
	for _, value := range types.Slice() {
		if value == "null" {
			nullable = true
			continue
		}
		values = append(values, value)
	}
	if len(values) == 1 {
		return values[0], nullable
	}
	return "", nullable
}

func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	result := make(map[string]any, len(raw))
	for key, value := range raw {
		if strings.HasPrefix(strings.ToLower(key), "x-") {
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
