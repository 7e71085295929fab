package jsonschema

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

func TestParser_Detect(t *testing.T) {
	parser := NewParser(nil)
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"type":"object"}`, true},
		{`{"openapi":"3.0.0","info":{}}`, false},
		{`{"swagger":"2.0"}`, false},
		{`[1,2,3]`, false},
		{`not json`, false},
		{"  \n{\"$schema\":\"x\"}", true},
	}
	for _, tc := range cases {
		if got := parser.Detect(SourceFromFS("x.json"), []byte(tc.raw)); got != tc.want {
			t.Fatalf("Detect(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParser_ParseObject(t *testing.T) {
	raw := `{
  "title": "Person",
  "description": "A <b>person</b>.",
  "type": "object",
  "required": ["firstName"],
  "properties": {
    "firstName": {"type": "string"},
    "nickname": {"type": ["string", "null"]},
    "age": {"type": "integer", "format": "int32"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "attributes": {"type": "object", "additionalProperties": {"type": "number"}},
    "kind": {"enum": ["a", "b", null]},
    "x": {"type": "string", "x-legacy": true}
  }
}`
	set, err := parseFS(t, nil, "person.json", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.DocumentPath != "person.json" {
		t.Fatalf("unexpected document path %q", set.DocumentPath)
	}
	root := set.Root
	if root == nil {
		t.Fatalf("expected root schema")
	}
	if root.Title != "Person" || root.Type != "object" {
		t.Fatalf("unexpected root %+v", root)
	}
	if !root.IsRequired("firstName") || root.IsRequired("age") {
		t.Fatalf("unexpected required list %v", root.Required)
	}

	wantNames := []string{"age", "attributes", "firstName", "kind", "nickname", "tags", "x"}
	if diff := cmp.Diff(wantNames, root.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}

	nickname := root.Properties["nickname"]
	if nickname.Type != "string" || !nickname.Nullable {
		t.Fatalf("expected nullable string, got %+v", nickname)
	}
	if root.Properties["age"].Format != "int32" {
		t.Fatalf("expected int32 format")
	}
	if items := root.Properties["tags"].Items; items == nil || items.Type != "string" {
		t.Fatalf("expected string items, got %+v", items)
	}
	if extra := root.Properties["attributes"].AdditionalProperties; extra == nil || extra.Type != "number" {
		t.Fatalf("expected number map values, got %+v", extra)
	}
	kind := root.Properties["kind"]
	if diff := cmp.Diff([]any{"a", "b"}, kind.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if !kind.Nullable {
		t.Fatalf("expected null enum entry to mark nullable")
	}
	if root.Properties["x"].Extensions["x-legacy"] != true {
		t.Fatalf("expected vendor extension preserved")
	}
}

func TestParser_DefinitionsOnlyDocument(t *testing.T) {
	raw := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "Color": {"type": "string", "enum": ["red", "green"]},
    "Point": {"type": "object", "properties": {"x": {"type": "number"}}}
  }
}`
	set, err := parseFS(t, nil, "shapes.json", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Root != nil {
		t.Fatalf("expected no root type, got %+v", set.Root)
	}
	want := []string{"#/$defs/Color", "#/$defs/Point"}
	if diff := cmp.Diff(want, set.DefinitionKeys()); diff != "" {
		t.Fatalf("definition keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_AllOfInheritance(t *testing.T) {
	raw := `{
  "definitions": {
    "Animal": {"type": "object", "properties": {"name": {"type": "string"}}}
  },
  "title": "Dog",
  "allOf": [
    {"$ref": "#/definitions/Animal"},
    {"type": "object", "properties": {"barks": {"type": "boolean"}}}
  ]
}`
	set, err := parseFS(t, nil, "dog.json", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(set.Root.AllOf) != 2 {
		t.Fatalf("expected two allOf entries, got %d", len(set.Root.AllOf))
	}
	if set.Root.AllOf[0].Ref != "#/definitions/Animal" {
		t.Fatalf("unexpected base ref %q", set.Root.AllOf[0].Ref)
	}
	if set.Root.AllOf[1].Properties["barks"].Type != "boolean" {
		t.Fatalf("expected barks property")
	}
}

func TestParser_InvalidSchemaRejected(t *testing.T) {
	if _, err := parseFS(t, nil, "bad.json", `{"type": 12}`); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := parseFS(t, nil, "bad.json", `{"minLength": "three"}`); err == nil {
		t.Fatalf("expected meta-schema error")
	}
}

func TestParser_ValidationCanBeDisabled(t *testing.T) {
	set, err := parseFS(t, nil, "lenient.json", `{"type":"object","minLength":"three"}`, WithValidation(false))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Root == nil || set.Root.Type != "object" {
		t.Fatalf("unexpected root %+v", set.Root)
	}
}

func TestParser_DecodeErrors(t *testing.T) {
	parser := NewParser(nil)
	for _, raw := range []string{`{`, `[]`, `"text"`} {
		doc := MustNewDocument(SourceFromFS("x.json"), []byte(raw))
		if _, err := parser.Parse(context.Background(), doc); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParser_RegistersWithRegistry(t *testing.T) {
	registry := schema.NewParserRegistry(ParserName)
	registry.MustRegister(NewParser(nil))

	doc := MustNewDocument(SourceFromFS("x.json"), []byte(`{"type":"string","enum":["a"]}`))
	set, err := registry.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !set.Root.IsEnum() {
		t.Fatalf("expected enum root")
	}
}

func TestParser_MissingSchemaDefaultsToDraft4(t *testing.T) {
	raw := `{"title":"Item","type":"object","properties":{"qty":{"type":"integer","minimum":0,"exclusiveMinimum":true}}}`
	set, err := parseFS(t, nil, "item.json", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Root == nil || set.Root.Properties["qty"].Type != "integer" {
		t.Fatalf("unexpected root %+v", set.Root)
	}

	// The same keyword is invalid once the document declares draft 7.
	declared := `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","properties":{"qty":{"type":"integer","exclusiveMinimum":true}}}`
	if _, err := parseFS(t, nil, "item.json", declared); err == nil {
		t.Fatalf("expected draft 7 validation error")
	}
}

func TestParser_UnknownDialectSkipsValidation(t *testing.T) {
	var logs bytes.Buffer
	raw := `{"$schema":"https://example.com/custom-meta#","title":"Widget","type":"object","minLength":"three","properties":{"id":{"type":"string"}}}`

	set, err := parseFS(t, nil, "widget.json", raw, WithLogger(log.NewLogfmtLogger(&logs)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Root == nil || set.Root.Title != "Widget" {
		t.Fatalf("unexpected root %+v", set.Root)
	}
	if !strings.Contains(logs.String(), "level=warn") || !strings.Contains(logs.String(), "custom-meta") {
		t.Fatalf("expected warning, got %q", logs.String())
	}
}

func TestDialectDraft(t *testing.T) {
	for _, uri := range []string{
		"http://json-schema.org/draft-04/schema#",
		"https://json-schema.org/draft-06/schema",
		"http://json-schema.org/draft-07/schema#",
		"https://json-schema.org/draft/2019-09/schema",
		"https://json-schema.org/draft/2020-12/schema",
	} {
		if _, ok := dialectDraft(uri); !ok {
			t.Fatalf("dialectDraft(%q) not recognised", uri)
		}
	}
	if _, ok := dialectDraft("https://example.com/custom-meta#"); ok {
		t.Fatalf("custom meta-schema should not be recognised")
	}
}

func TestDraftFor(t *testing.T) {
	for _, name := range []string{"", "7", "draft-07", "4", "6", "2019-09", "2020-12"} {
		if _, err := draftFor(name); err != nil {
			t.Fatalf("draftFor(%q): %v", name, err)
		}
	}
	if _, err := draftFor("3"); err == nil {
		t.Fatalf("expected unknown draft error")
	}
}
