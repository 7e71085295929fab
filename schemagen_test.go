package schemagen

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-schemagen/pkg/batch"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

func TestNewGeneratorRegistry(t *testing.T) {
	registry, err := NewGeneratorRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"csharp", "typescript"}, registry.List()); diff != "" {
		t.Fatalf("generators mismatch (-want +got):\n%s", diff)
	}
}

func TestNewParser_DispatchesByFormat(t *testing.T) {
	files := afero.NewMemMapFs()
	parser := NewParser(NewLoader(jsonschema.WithFiles(files)))

	openapiDoc := schema.MustNewDocument(schema.SourceFromFile("/api.json"), []byte(`{
		"openapi": "3.0.3",
		"info": {"title": "Pets", "version": "1.0.0"},
		"paths": {},
		"components": {"schemas": {"Pet": {"type": "object", "properties": {"name": {"type": "string"}}}}}
	}`))
	set, err := parser.Parse(context.Background(), openapiDoc)
	if err != nil {
		t.Fatalf("parse openapi: %v", err)
	}
	if _, ok := set.Definitions["#/components/schemas/Pet"]; !ok {
		t.Fatalf("expected Pet component, got %v", set.DefinitionKeys())
	}

	jsonDoc := schema.MustNewDocument(schema.SourceFromFile("/person.json"), []byte(`{"type":"object"}`))
	set, err = parser.Parse(context.Background(), jsonDoc)
	if err != nil {
		t.Fatalf("parse json schema: %v", err)
	}
	if set.Root == nil {
		t.Fatalf("expected a root type")
	}
}

func TestEndToEnd(t *testing.T) {
	files := afero.NewMemMapFs()
	if err := afero.WriteFile(files, "/schemas/orders/order.schema.json", []byte(`{
		"title": "Order",
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "format": "uuid"},
			"lines": {"type": "array", "items": {"$ref": "#/definitions/Line"}}
		},
		"definitions": {
			"Line": {"type": "object", "properties": {"qty": {"type": "integer"}}}
		}
	}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	registry, err := NewGeneratorRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	ts, _ := registry.Get("typescript")
	cs, _ := registry.Get("csharp")

	driver, err := NewDriver(batch.WithFs(files))
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	if _, err := driver.Run(context.Background(), batch.Request{
		SchemaDir: "/schemas",
		Namespace: "Shop",
		Targets: []batch.Target{
			{Generator: ts, Dir: "/out/ts"},
			{Generator: cs, Dir: "/out/cs"},
		},
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	tsOut, err := afero.ReadFile(files, "/out/ts/orders/order.ts")
	if err != nil {
		t.Fatalf("read ts: %v", err)
	}
	for _, fragment := range []string{"export interface Order {", "    id: string;", "    lines?: Line[];", "export interface Line {"} {
		if !strings.Contains(string(tsOut), fragment) {
			t.Fatalf("typescript output missing %q:\n%s", fragment, tsOut)
		}
	}

	csOut, err := afero.ReadFile(files, "/out/cs/orders/order.cs")
	if err != nil {
		t.Fatalf("read cs: %v", err)
	}
	for _, fragment := range []string{"namespace Shop.orders", "public System.Guid Id { get; set; }", "public ICollection<Line> Lines { get; set; }"} {
		if !strings.Contains(string(csOut), fragment) {
			t.Fatalf("csharp output missing %q:\n%s", fragment, csOut)
		}
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"typescript", "csharp"} {
		fsys, err := EmbeddedTemplates(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := fs.ReadFile(fsys, "file.tpl"); err != nil {
			t.Fatalf("%s: expected file.tpl: %v", name, err)
		}
	}
	if _, err := EmbeddedTemplates("rust"); err == nil {
		t.Fatalf("expected unknown generator error")
	}
}
