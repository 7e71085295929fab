package openapi

import (
	"bytes"
	"encoding/json"
)

// ParserName identifies the OpenAPI parser in a schema.ParserRegistry.
const ParserName = "openapi"

// ComponentRefPrefix prefixes the canonical key of every component schema.
const ComponentRefPrefix = "#/components/schemas/"

// ParserOptions toggles how component schemas are read.
type ParserOptions struct {
	// AllowExternalRefs lets kin-openapi follow refs into other documents.
	AllowExternalRefs bool

	// Validate runs the OpenAPI document validator before conversion.
	Validate bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithExternalRefs toggles loading of refs that point outside the document.
func WithExternalRefs(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowExternalRefs = enabled
	}
}

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration. Implementations under internal/openapi should call this helper
// to remain consistent.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		Validate: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Detect reports whether raw is a JSON OpenAPI or Swagger description.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	if _, ok := probe["openapi"]; ok {
		return true
	}
	_, ok := probe["swagger"]
	return ok
}
