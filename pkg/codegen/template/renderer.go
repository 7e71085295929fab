package template

import (
	"io"
)

// Filter transforms a value inside a template expression. param is nil when
// the template passes no argument.
type Filter func(input any, param any) (any, error)

// TemplateRenderer renders named source templates or inline template strings.
// Data is converted through its JSON encoding, so view structs expose fields
// under their json tags.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn Filter) error
	GlobalContext(data any) error
}
