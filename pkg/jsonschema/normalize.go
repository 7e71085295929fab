package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// definitionContainers lists the keywords whose members are reusable
// definitions rather than inline schemas.
var definitionContainers = []string{"$defs", "definitions"}

func decodeDocument(raw []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("jsonschema: decode document: %w", err)
	}
	object, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema: document root must be an object")
	}
	return object, nil
}

// convert maps one raw JSON Schema node onto schema.Schema. Unknown keywords
// are ignored; $ref values are rewritten to canonical keys and queued for
// bundling.
func (s *bundleSession) convert(doc *bundleDocument, node any, pointer string) (schema.Schema, error) {
	switch typed := node.(type) {
	case bool:
		// true accepts anything; false has no useful shape for codegen.
		return schema.Schema{}, nil
	case map[string]any:
		return s.convertObject(doc, typed, pointer)
	case nil:
		return schema.Schema{}, nil
	default:
		return schema.Schema{}, fmt.Errorf("jsonschema: %s: schema must be an object or boolean", pointer)
	}
}

func (s *bundleSession) convertObject(doc *bundleDocument, payload map[string]any, pointer string) (schema.Schema, error) {
	out := schema.Schema{
		Format:      readString(payload, "format"),
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: readString(payload, "description"),
		Default:     payload["default"],
		Const:       payload["const"],
		Deprecated:  readBool(payload, "deprecated"),
		ReadOnly:    readBool(payload, "readOnly"),
		Extensions:  extractExtensions(payload),
	}

	if ref := strings.TrimSpace(readString(payload, "$ref")); ref != "" {
		key, err := s.reference(doc, ref)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("jsonschema: %s: %w", pointer, err)
		}
		out.Ref = key
	}

	typ, nullable, err := readType(payload["type"])
	if err != nil {
		return schema.Schema{}, fmt.Errorf("jsonschema: %s: %w", pointer, err)
	}
	out.Type = typ
	out.Nullable = nullable || readBool(payload, "nullable") || readBool(payload, "x-nullable")

	if values, ok := payload["enum"].([]any); ok {
		out.Enum = make([]any, 0, len(values))
		for _, value := range values {
			if value == nil {
				out.Nullable = true
				continue
			}
			out.Enum = append(out.Enum, value)
		}
		if len(out.Enum) == 0 {
			out.Enum = nil
		}
	}

	if required, ok := payload["required"].([]any); ok {
		for _, entry := range required {
			if name, ok := entry.(string); ok && name != "" {
				out.Required = append(out.Required, name)
			}
		}
	}

	if props, ok := payload["properties"].(map[string]any); ok && len(props) > 0 {
		out.Properties = make(map[string]schema.Schema, len(props))
		for _, name := range sortedKeys(props) {
			child, err := s.convert(doc, props[name], joinPath(pointer, "properties", name))
			if err != nil {
				return schema.Schema{}, err
			}
			out.Properties[name] = child
		}
	}

	switch additional := payload["additionalProperties"].(type) {
	case bool:
		if additional && out.Properties == nil && out.Type == "object" {
			out.AdditionalProperties = &schema.Schema{}
		}
	case map[string]any:
		child, err := s.convert(doc, additional, joinPath(pointer, "additionalProperties"))
		if err != nil {
			return schema.Schema{}, err
		}
		out.AdditionalProperties = &child
	}

	if items, ok := payload["items"].(map[string]any); ok {
		child, err := s.convert(doc, items, joinPath(pointer, "items"))
		if err != nil {
			return schema.Schema{}, err
		}
		out.Items = &child
	}
	if out.Type == "" && out.Items != nil {
		out.Type = "array"
	}

	for _, keyword := range []string{"allOf", "oneOf", "anyOf"} {
		list, ok := payload[keyword].([]any)
		if !ok {
			continue
		}
		variants := make([]schema.Schema, 0, len(list))
		for idx, entry := range list {
			child, err := s.convert(doc, entry, joinPath(pointer, keyword, fmt.Sprint(idx)))
			if err != nil {
				return schema.Schema{}, err
			}
			variants = append(variants, child)
		}
		switch keyword {
		case "allOf":
			out.AllOf = variants
		case "oneOf":
			out.OneOf = variants
		case "anyOf":
			out.AnyOf = variants
		}
	}

	if doc == s.root {
		if err := s.collectDefinitions(doc, payload, pointer); err != nil {
			return schema.Schema{}, err
		}
	}
	return out, nil
}

// collectDefinitions registers every member of $defs and definitions under
// its canonical key, even when nothing references it.
func (s *bundleSession) collectDefinitions(doc *bundleDocument, payload map[string]any, pointer string) error {
	for _, container := range definitionContainers {
		defs, ok := payload[container].(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(defs) {
			defPointer := joinPath(pointer, container, name)
			if err := s.define(doc, defPointer, defs[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func readType(value any) (string, bool, error) {
	switch typed := value.(type) {
	case nil:
		return "", false, nil
	case string:
		if typed == "null" {
			return "", true, nil
		}
		if !isAllowedType(typed) {
			return "", false, fmt.Errorf("unsupported type %q", typed)
		}
		return typed, false, nil
	case []any:
		nullable := false
		var types []string
		for _, entry := range typed {
			name, ok := entry.(string)
			if !ok {
				return "", false, errors.New("type entries must be strings")
			}
			if name == "null" {
				nullable = true
				continue
			}
			if !isAllowedType(name) {
				return "", false, fmt.Errorf("unsupported type %q", name)
			}
			types = append(types, name)
		}
		if len(types) == 1 {
			return types[0], nullable, nil
		}
		// Several non-null types have no single target type; leave it open.
		return "", nullable, nil
	default:
		return "", false, errors.New("type must be a string or array")
	}
}

func readString(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

func readBool(payload map[string]any, key string) bool {
	value, _ := payload[key].(bool)
	return value
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload map[string]any) map[string]any {
	var extensions map[string]any
	for _, key := range sortedKeys(payload) {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = payload[key]
	}
	return extensions
}

func isAllowedType(value string) bool {
	switch value {
	case "object", "array", "string", "integer", "number", "boolean":
		return true
	default:
		return false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" || path == "#" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
