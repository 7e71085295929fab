package schemagen

import (
	"fmt"
	"io/fs"

	"github.com/goliatone/go-schemagen/pkg/codegen/csharp"
	"github.com/goliatone/go-schemagen/pkg/codegen/typescript"
)

// EmbeddedTemplates exposes the built-in templates of the named generator so
// callers can reuse or extend them without importing the generator package.
func EmbeddedTemplates(generator string) (fs.FS, error) {
	switch generator {
	case typescript.Name:
		return typescript.TemplatesFS(), nil
	case csharp.Name:
		return csharp.TemplatesFS(), nil
	default:
		return nil, fmt.Errorf("schemagen: unknown generator %q", generator)
	}
}
