package gotemplate_test

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-schemagen/pkg/codegen/template"
	"github.com/goliatone/go-schemagen/pkg/codegen/template/gotemplate"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hello Ada!\n" {
		t.Fatalf("unexpected result %q", result)
	}
	if buf.String() != result {
		t.Fatalf("writer mismatch %q", buf.String())
	}
}

func TestEngine_TrimBlocks(t *testing.T) {
	engine := newEngine(t)
	type view struct {
		Items []string `json:"items"`
	}

	result, err := engine.RenderTemplate("list", view{Items: []string{"Alpha", "Beta"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "- alpha\n- beta\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_TrimBlocksDisabled(t *testing.T) {
	engine := newEngine(t, gotemplate.WithTrimBlocks(false))

	result, err := engine.RenderTemplate("list", map[string]any{"items": []any{"A"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "\n- a\n\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout_test", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderString(`{{ name|shout_test }}`, map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected result %q", result)
	}
	if err := engine.RegisterFilter("shout_test", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestEngine_WithFilters(t *testing.T) {
	engine := newEngine(t, gotemplate.WithFilters(map[string]template.Filter{
		"suffix_test": func(input any, param any) (any, error) {
			return fmt.Sprint(input) + fmt.Sprint(param), nil
		},
	}))

	result, err := engine.RenderString(`{{ name|suffix_test:"Dto" }}`, map[string]any{"name": "Order"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "OrderDto" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_WithFiltersRejectsKnownName(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	for name, fn := range map[string]template.Filter{
		"upper":    func(input any, _ any) (any, error) { return input, nil },
		"":         func(input any, _ any) (any, error) { return input, nil },
		"nil_test": nil,
	} {
		_, err := gotemplate.New(gotemplate.WithFS(templatesFS), gotemplate.WithFilters(map[string]template.Filter{name: fn}))
		if err == nil {
			t.Fatalf("expected error registering filter %q", name)
		}
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "ci"},
	}))

	result, err := engine.RenderTemplate("use-global.tpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=ci\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_RejectsNonObjectData(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("hello", []string{"a"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func TestEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}
