package typescript

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/codegen"
	"github.com/goliatone/go-schemagen/pkg/naming"
)

type fileView struct {
	Source string     `json:"source"`
	Types  []typeView `json:"types"`
}

type typeView struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Declaration string         `json:"declaration"`
	Comment     []string       `json:"comment"`
	Properties  []propertyView `json:"properties"`
	Members     []memberView   `json:"members"`
	Alias       string         `json:"alias"`
}

type propertyView struct {
	Comment     []string `json:"comment"`
	Declaration string   `json:"declaration"`
}

type memberView struct {
	Declaration string `json:"declaration"`
}

func newFileView(file codegen.File) fileView {
	view := fileView{
		Source: path.Base(strings.ReplaceAll(file.Source, "\\", "/")),
		Types:  []typeView{},
	}
	for _, typ := range file.Types {
		entry := typeView{
			Name:        typ.Name,
			Kind:        string(typ.Kind),
			Declaration: typ.Name,
			Comment:     docComment(typ.Description, typ.Deprecated),
			Properties:  []propertyView{},
			Members:     []memberView{},
		}
		switch typ.Kind {
		case codegen.KindClass:
			if typ.Base != "" {
				entry.Declaration += " extends " + typ.Base
			}
			for _, prop := range typ.Properties {
				entry.Properties = append(entry.Properties, propertyView{
					Comment:     docComment(prop.Description, prop.Deprecated),
					Declaration: propertyDeclaration(prop),
				})
			}
		case codegen.KindEnum:
			for _, member := range typ.Members {
				entry.Members = append(entry.Members, memberView{
					Declaration: member.Name + " = " + literal(member.Value) + ",",
				})
			}
		default:
			if typ.Alias != nil {
				entry.Alias = TypeExpr(*typ.Alias)
			} else {
				entry.Alias = "any"
			}
		}
		view.Types = append(view.Types, entry)
	}
	return view
}

func propertyDeclaration(prop codegen.Property) string {
	var b strings.Builder
	if prop.ReadOnly {
		b.WriteString("readonly ")
	}
	b.WriteString(PropertyKey(prop.JSONName))
	if !prop.Required {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(TypeExpr(prop.Type))
	b.WriteString(";")
	return b.String()
}

// PropertyKey returns name as an interface key, quoted when it is not a
// plain identifier.
func PropertyKey(name string) string {
	if naming.IsIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

// TypeExpr renders a type reference as a TypeScript type expression.
func TypeExpr(ref codegen.TypeRef) string {
	expr := bareExpr(ref)
	if ref.Nullable {
		return expr + " | null"
	}
	return expr
}

func bareExpr(ref codegen.TypeRef) string {
	switch ref.Kind {
	case codegen.RefNamed:
		return ref.Name
	case codegen.RefPrimitive:
		switch ref.Primitive {
		case "integer", "number":
			return "number"
		case "boolean":
			return "boolean"
		case "string":
			return "string"
		}
		return "any"
	case codegen.RefArray:
		elem := "any"
		if ref.Elem != nil {
			elem = TypeExpr(*ref.Elem)
		}
		if strings.Contains(elem, " ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case codegen.RefMap:
		value := "any"
		if ref.Elem != nil {
			value = TypeExpr(*ref.Elem)
		}
		return "{ [key: string]: " + value + "; }"
	case codegen.RefUnion:
		parts := make([]string, 0, len(ref.Variants))
		for _, variant := range ref.Variants {
			parts = append(parts, TypeExpr(variant))
		}
		return strings.Join(parts, " | ")
	default:
		return "any"
	}
}

func literal(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}

func docComment(lines []string, deprecated bool) []string {
	if len(lines) == 0 && !deprecated {
		return []string{}
	}
	out := []string{"/**"}
	for _, line := range lines {
		if line == "" {
			out = append(out, " *")
			continue
		}
		out = append(out, " * "+strings.ReplaceAll(line, "*/", "*\\/"))
	}
	if deprecated {
		out = append(out, " * @deprecated")
	}
	return append(out, " */")
}
