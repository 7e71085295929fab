package csharp

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/codegen"
	"github.com/goliatone/go-schemagen/pkg/codegen/template"
	"github.com/goliatone/go-schemagen/pkg/codegen/template/gotemplate"
	"github.com/goliatone/go-schemagen/pkg/naming"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Name identifies the generator in a codegen.Registry.
const Name = "csharp"

// DefaultNamespace wraps generated types when settings carry none.
const DefaultNamespace = "Root"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Generator emits Newtonsoft.Json annotated C# classes and enums. Named
// aliases have no C# counterpart and are inlined where they are used.
type Generator struct {
	renderer template.TemplateRenderer
}

var _ codegen.Generator = (*Generator)(nil)

// Option customises the generator.
type Option func(*Generator)

// WithRenderer swaps the template renderer.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		if renderer != nil {
			g.renderer = renderer
		}
	}
}

// New constructs a generator backed by the embedded templates.
func New(options ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.renderer == nil {
		templates, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("csharp: templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(templates), gotemplate.WithName(Name))
		if err != nil {
			return nil, fmt.Errorf("csharp: %w", err)
		}
		g.renderer = engine
	}
	return g, nil
}

// Name implements codegen.Generator.
func (g *Generator) Name() string {
	return Name
}

// Extension implements codegen.Generator.
func (g *Generator) Extension() string {
	return ".cs"
}

// Generate implements codegen.Generator.
func (g *Generator) Generate(ctx context.Context, set *schema.Set, settings codegen.Settings) ([]byte, error) {
	if g == nil || g.renderer == nil {
		return nil, errors.New("csharp: generator is not initialised")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(settings.Namespace) == "" {
		settings.Namespace = DefaultNamespace
	}
	if settings.Properties == nil {
		settings.Properties = naming.NewPropertyNamePolicy(nil, naming.CasingPascal)
	}

	file, err := codegen.Build(set, settings,
		codegen.WithOwnerReserved(),
		codegen.WithMemberReservedWords(Keywords...),
	)
	if err != nil {
		return nil, err
	}

	out, err := g.renderer.RenderTemplate("file", newFileView(file))
	if err != nil {
		return nil, fmt.Errorf("csharp: render %s: %w", set.DocumentPath, err)
	}
	return []byte(out), nil
}

// TemplatesFS exposes the embedded templates so callers can copy and extend
// them, then pass an engine over the result through WithRenderer.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
