package typescript

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-schemagen/pkg/codegen"
	"github.com/goliatone/go-schemagen/pkg/naming"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	gen, err := New()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func generate(t *testing.T, set *schema.Set, settings codegen.Settings) string {
	t.Helper()
	out, err := newGenerator(t).Generate(context.Background(), set, settings)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return string(out)
}

func TestGenerate_ExactOutput(t *testing.T) {
	set := schema.NewSet("schemas/item.json")
	set.Root = &schema.Schema{
		Type:       "object",
		Required:   []string{"id"},
		Properties: map[string]schema.Schema{"id": {Type: "integer"}},
	}

	got := generate(t, set, codegen.Settings{Namespace: "Root"})
	want := "// <auto-generated>\n" +
		"//     Generated by schemagen from item.json.\n" +
		"//     Changes to this file will be lost when the code is regenerated.\n" +
		"// </auto-generated>\n" +
		"\n" +
		"export interface Item {\n" +
		"    id: number;\n" +
		"}\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerate_PersonDocument(t *testing.T) {
	set := schema.NewSet("schemas/person.schema.json")
	set.Root = &schema.Schema{
		Type:        "object",
		Description: "A <em>person</em> & friends.",
		Required:    []string{"first-name"},
		Properties: map[string]schema.Schema{
			"first-name": {Type: "string"},
			"age":        {Type: "integer", Nullable: true},
			"address":    {Ref: "#/$defs/Address"},
			"status":     {Type: "string", Enum: []any{"active", "on hold"}},
			"tags":       {Type: "array", Items: &schema.Schema{Type: "string", Nullable: true}},
			"labels":     {Type: "object", AdditionalProperties: &schema.Schema{Type: "string"}},
			"id":         {Type: "string", ReadOnly: true, Deprecated: true},
		},
	}
	set.Definitions["#/$defs/Address"] = schema.Schema{
		Type:       "object",
		Properties: map[string]schema.Schema{"street": {Type: "string"}},
	}

	got := generate(t, set, codegen.Settings{})

	for _, fragment := range []string{
		"/**\n * A person & friends.\n */\nexport interface Person {\n",
		"    \"first-name\": string;\n",
		"    age?: number | null;\n",
		"    address?: Address;\n",
		"    status?: Status;\n",
		"    tags?: (string | null)[];\n",
		"    labels?: { [key: string]: string; };\n",
		"    /**\n     * @deprecated\n     */\n    readonly id?: string;\n",
		"export interface Address {\n    street?: string;\n}\n",
		"export enum Status {\n    Active = \"active\",\n    OnHold = \"on hold\",\n}\n",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, got)
		}
	}
	if strings.Contains(got, "&amp;") || strings.Contains(got, "namespace") {
		t.Fatalf("unexpected escaping or namespace in output:\n%s", got)
	}
}

func TestGenerate_AliasesEnumsAndInheritance(t *testing.T) {
	set := schema.NewSet("shapes.json")
	set.Definitions["#/definitions/Id"] = schema.Schema{OneOf: []schema.Schema{{Type: "string"}, {Type: "integer"}}}
	set.Definitions["#/definitions/Level"] = schema.Schema{Type: "integer", Enum: []any{float64(1), float64(-2)}}
	set.Definitions["#/definitions/Base"] = schema.Schema{
		Type:       "object",
		Properties: map[string]schema.Schema{"id": {Ref: "#/definitions/Id"}},
	}
	set.Definitions["#/definitions/Shape"] = schema.Schema{
		AllOf: []schema.Schema{
			{Ref: "#/definitions/Base"},
			{Properties: map[string]schema.Schema{"level": {Ref: "#/definitions/Level"}}},
		},
	}

	got := generate(t, set, codegen.Settings{})

	for _, fragment := range []string{
		"export type Id = string | number;\n",
		"export enum Level {\n    _1 = 1,\n    Minus2 = -2,\n}\n",
		"export interface Shape extends Base {\n    level?: Level;\n}\n",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, got)
		}
	}
}

func TestGenerate_IgnoresPropertyPolicy(t *testing.T) {
	set := schema.NewSet("item.json")
	set.Root = &schema.Schema{
		Type:       "object",
		Properties: map[string]schema.Schema{"display_name": {Type: "string"}},
	}

	settings := codegen.Settings{
		Properties: naming.NewPropertyNamePolicy(nil, naming.CasingPascal),
	}
	got := generate(t, set, settings)
	if !strings.Contains(got, "    display_name?: string;\n") {
		t.Fatalf("expected JSON property name to be kept:\n%s", got)
	}
}

func TestGenerate_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newGenerator(t).Generate(ctx, schema.NewSet("a.json"), codegen.Settings{}); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}

func TestTypeExpr(t *testing.T) {
	str := codegen.TypeRef{Kind: codegen.RefPrimitive, Primitive: "string"}
	num := codegen.TypeRef{Kind: codegen.RefPrimitive, Primitive: "number"}
	cases := []struct {
		name string
		ref  codegen.TypeRef
		want string
	}{
		{"any", codegen.TypeRef{Kind: codegen.RefAny}, "any"},
		{"boolean", codegen.TypeRef{Kind: codegen.RefPrimitive, Primitive: "boolean"}, "boolean"},
		{"nullable", codegen.TypeRef{Kind: codegen.RefPrimitive, Primitive: "integer", Nullable: true}, "number | null"},
		{"array", codegen.TypeRef{Kind: codegen.RefArray, Elem: &str}, "string[]"},
		{"nested array", codegen.TypeRef{Kind: codegen.RefArray, Elem: &codegen.TypeRef{Kind: codegen.RefArray, Elem: &num}}, "number[][]"},
		{"union", codegen.TypeRef{Kind: codegen.RefUnion, Variants: []codegen.TypeRef{str, num}}, "string | number"},
		{"union array", codegen.TypeRef{Kind: codegen.RefArray, Elem: &codegen.TypeRef{Kind: codegen.RefUnion, Variants: []codegen.TypeRef{str, num}}}, "(string | number)[]"},
		{"map", codegen.TypeRef{Kind: codegen.RefMap, Elem: &num}, "{ [key: string]: number; }"},
		{"named", codegen.TypeRef{Kind: codegen.RefNamed, Name: "Person"}, "Person"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TypeExpr(tc.ref); got != tc.want {
				t.Fatalf("TypeExpr() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPropertyKey(t *testing.T) {
	if got := PropertyKey("name"); got != "name" {
		t.Fatalf("PropertyKey(name) = %q", got)
	}
	if got := PropertyKey("first-name"); got != `"first-name"` {
		t.Fatalf("PropertyKey(first-name) = %q", got)
	}
}
