// Package schemagen generates TypeScript and C# sources from JSON Schema
// documents. The root package wires the default loader, parsers and
// generators; the pieces live under pkg/ for callers that need to swap one.
package schemagen

import (
	"fmt"

	internalLoader "github.com/goliatone/go-schemagen/internal/jsonschema/loader"
	"github.com/goliatone/go-schemagen/pkg/batch"
	"github.com/goliatone/go-schemagen/pkg/codegen"
	"github.com/goliatone/go-schemagen/pkg/codegen/csharp"
	"github.com/goliatone/go-schemagen/pkg/codegen/typescript"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...jsonschema.LoaderOption) jsonschema.Loader {
	cfg := jsonschema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser returns a parser that accepts OpenAPI 3 and JSON Schema documents.
// External refs are read through loader.
func NewParser(loader jsonschema.Loader, options ...jsonschema.ParserOption) *schema.ParserRegistry {
	return batch.NewParserRegistry(loader, options...)
}

// NewGeneratorRegistry returns a registry holding the TypeScript and C#
// generators.
func NewGeneratorRegistry() (*codegen.Registry, error) {
	registry := codegen.NewRegistry()

	ts, err := typescript.New()
	if err != nil {
		return nil, fmt.Errorf("schemagen: typescript generator: %w", err)
	}
	if err := registry.Register(ts); err != nil {
		return nil, err
	}

	cs, err := csharp.New()
	if err != nil {
		return nil, fmt.Errorf("schemagen: csharp generator: %w", err)
	}
	if err := registry.Register(cs); err != nil {
		return nil, err
	}
	return registry, nil
}

// NewDriver exposes the batch driver constructor from the top-level module.
func NewDriver(options ...batch.Option) (*batch.Driver, error) {
	return batch.New(options...)
}
