package jsonschema

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

type memoryLoader struct {
	docs  map[string]string
	calls map[string]int
}

func (m *memoryLoader) Load(ctx context.Context, src Source) (schema.Document, error) {
	if m.calls != nil {
		m.calls[src.Location()]++
	}
	raw, ok := m.docs[src.Location()]
	if !ok {
		return schema.Document{}, fmt.Errorf("missing document %q", src.Location())
	}
	return schema.NewDocument(src, []byte(raw))
}

func parseFS(t *testing.T, loader Loader, location string, raw string, options ...ParserOption) (*schema.Set, error) {
	t.Helper()
	parser := NewParser(loader, options...)
	doc := MustNewDocument(SourceFromFS(location), []byte(raw))
	return parser.Parse(context.Background(), doc)
}

func TestResolver_BundlesExternalDefinition(t *testing.T) {
	root := `{
  "type":"object",
  "properties": {
    "price": {"$ref": "common.json#/definitions/Money"}
  }
}`
	common := `{
  "definitions": {
    "Money": {"type":"object","properties":{"amount":{"type":"number"}}},
    "Unused": {"type":"string"}
  }
}`
	loader := &memoryLoader{
		docs:  map[string]string{"common.json": common},
		calls: map[string]int{},
	}

	set, err := parseFS(t, loader, "root.json", root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := set.Root.Properties["price"].Ref; got != "common.json#/definitions/Money" {
		t.Fatalf("unexpected ref %q", got)
	}
	if diff := cmp.Diff([]string{"common.json#/definitions/Money"}, set.DefinitionKeys()); diff != "" {
		t.Fatalf("definition keys mismatch (-want +got):\n%s", diff)
	}
	money, _ := set.Definition("common.json#/definitions/Money")
	if money.Properties["amount"].Type != "number" {
		t.Fatalf("expected amount number, got %+v", money.Properties["amount"])
	}
	if loader.calls["common.json"] != 1 {
		t.Fatalf("expected common.json loaded once, got %d", loader.calls["common.json"])
	}
}

func TestResolver_WholeDocumentRef(t *testing.T) {
	root := `{"type":"object","properties":{"owner":{"$ref":"people/person.schema.json"}}}`
	person := `{"title":"Person","type":"object","properties":{"name":{"type":"string"}}}`
	loader := &memoryLoader{docs: map[string]string{"people/person.schema.json": person}}

	set, err := parseFS(t, loader, "root.json", root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	key := set.Root.Properties["owner"].Ref
	if key != "people/person.schema.json#" {
		t.Fatalf("unexpected key %q", key)
	}
	if name := schema.DefinitionName(key); name != "person" {
		t.Fatalf("unexpected definition name %q", name)
	}
	def, ok := set.Definition(key)
	if !ok || def.Title != "Person" {
		t.Fatalf("expected bundled person definition, got %+v", def)
	}
}

func TestResolver_TransitiveRefsResolveAgainstTheirDocument(t *testing.T) {
	root := `{"type":"object","properties":{"order":{"$ref":"shop/order.json"}}}`
	order := `{"type":"object","properties":{"line":{"$ref":"line.json#/definitions/Line"}}}`
	line := `{"definitions":{"Line":{"type":"object","properties":{"qty":{"type":"integer"}}}}}`
	loader := &memoryLoader{docs: map[string]string{
		"shop/order.json": order,
		"shop/line.json":  line,
	}}

	set, err := parseFS(t, loader, "root.json", root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"shop/line.json#/definitions/Line", "shop/order.json#"}
	if diff := cmp.Diff(want, set.DefinitionKeys()); diff != "" {
		t.Fatalf("definition keys mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_RecursiveRefTerminates(t *testing.T) {
	root := `{
  "definitions": {
    "Node": {
      "type":"object",
      "properties": {
        "children": {"type":"array","items":{"$ref":"#/definitions/Node"}}
      }
    }
  },
  "$ref": "#/definitions/Node"
}`
	set, err := parseFS(t, nil, "tree.json", root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	node, ok := set.Definition("#/definitions/Node")
	if !ok {
		t.Fatalf("expected Node definition")
	}
	if got := node.Properties["children"].Items.Ref; got != "#/definitions/Node" {
		t.Fatalf("unexpected items ref %q", got)
	}
	if set.Root == nil || set.Root.Ref != "#/definitions/Node" {
		t.Fatalf("expected root to reference Node, got %+v", set.Root)
	}
}

func TestResolver_AnchorRef(t *testing.T) {
	root := `{
  "$schema":"https://json-schema.org/draft/2020-12/schema",
  "type":"object",
  "properties": {"home": {"$ref": "#addr"}},
  "$defs": {"Address": {"$anchor":"addr","type":"object"}}
}`
	set, err := parseFS(t, nil, "root.json", root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := set.Root.Properties["home"].Ref; got != "#/$defs/Address" {
		t.Fatalf("unexpected ref %q", got)
	}
}

func TestResolver_PathTraversalBlocked(t *testing.T) {
	root := `{"type":"object","properties":{"secret":{"$ref":"../secret.json"}}}`
	loader := &memoryLoader{docs: map[string]string{"secret.json": `{"type":"string"}`}}

	_, err := parseFS(t, loader, "schemas/root.json", root, WithValidation(false))
	if err == nil || !strings.Contains(err.Error(), "escapes root") {
		t.Fatalf("expected traversal error, got %v", err)
	}

	_, err = parseFS(t, loader, "schemas/root.json", root,
		WithValidation(false),
		WithResolveOptions(ResolveOptions{AllowPathTraversal: true}))
	if err != nil {
		t.Fatalf("expected traversal allowed, got %v", err)
	}
}

func TestResolver_HTTPRefsDisabled(t *testing.T) {
	root := `{"type":"object","properties":{"x":{"$ref":"https://example.com/x.json"}}}`
	_, err := parseFS(t, &memoryLoader{}, "root.json", root, WithValidation(false))
	if err == nil || !strings.Contains(err.Error(), "http refs disabled") {
		t.Fatalf("expected http refs disabled error, got %v", err)
	}
}

func TestResolver_MaxDocuments(t *testing.T) {
	root := `{"type":"object","properties":{"a":{"$ref":"a.json"},"b":{"$ref":"b.json"}}}`
	loader := &memoryLoader{docs: map[string]string{
		"a.json": `{"type":"string"}`,
		"b.json": `{"type":"string"}`,
	}}
	_, err := parseFS(t, loader, "root.json", root,
		WithValidation(false),
		WithResolveOptions(ResolveOptions{MaxDocuments: 2}))
	if err == nil || !strings.Contains(err.Error(), "max documents") {
		t.Fatalf("expected max documents error, got %v", err)
	}
}

func TestResolveJSONPointer(t *testing.T) {
	payload := map[string]any{
		"a/b": map[string]any{"list": []any{"zero", "one"}},
	}
	got, err := resolveJSONPointer(payload, "#/a~1b/list/1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "one" {
		t.Fatalf("unexpected value %v", got)
	}
	if _, err := resolveJSONPointer(payload, "/missing"); err == nil {
		t.Fatalf("expected error for missing pointer")
	}
}
