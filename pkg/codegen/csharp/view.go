package csharp

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/codegen"
)

type fileView struct {
	Source    string     `json:"source"`
	Namespace string     `json:"namespace"`
	Types     []typeView `json:"types"`
}

type typeView struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Declaration string         `json:"declaration"`
	Comment     []string       `json:"comment"`
	Attributes  []string       `json:"attributes"`
	Properties  []propertyView `json:"properties"`
	Members     []memberView   `json:"members"`
}

type propertyView struct {
	Comment     []string `json:"comment"`
	Attributes  []string `json:"attributes"`
	Declaration string   `json:"declaration"`
}

type memberView struct {
	Attribute   string `json:"attribute"`
	Declaration string `json:"declaration"`
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func newFileView(file codegen.File) fileView {
	view := fileView{
		Source:    path.Base(strings.ReplaceAll(file.Source, "\\", "/")),
		Namespace: file.Namespace,
		Types:     []typeView{},
	}
	for _, typ := range file.Types {
		if typ.Kind == codegen.KindAlias {
			continue
		}
		entry := typeView{
			Name:        typ.Name,
			Kind:        string(typ.Kind),
			Declaration: typ.Name,
			Comment:     summary(typ.Description),
			Attributes:  []string{},
			Properties:  []propertyView{},
			Members:     []memberView{},
		}
		if typ.Deprecated {
			entry.Attributes = append(entry.Attributes, "[System.Obsolete]")
		}

		switch typ.Kind {
		case codegen.KindClass:
			if typ.Base != "" {
				entry.Declaration += " : " + typ.Base
			}
			for _, prop := range typ.Properties {
				entry.Properties = append(entry.Properties, newPropertyView(prop))
			}
		case codegen.KindEnum:
			if typ.StringEnum {
				entry.Attributes = append(entry.Attributes, "[JsonConverter(typeof(StringEnumConverter))]")
			}
			for idx, member := range typ.Members {
				entry.Members = append(entry.Members, newMemberView(member, idx, typ.StringEnum))
			}
		}
		view.Types = append(view.Types, entry)
	}
	return view
}

func newPropertyView(prop codegen.Property) propertyView {
	var attribute string
	switch {
	case prop.Required && !prop.Type.Resolved().Nullable:
		attribute = fmt.Sprintf("[JsonProperty(%s, Required = Required.Always)]", Literal(prop.JSONName))
	case prop.Required:
		attribute = fmt.Sprintf("[JsonProperty(%s, Required = Required.AllowNull)]", Literal(prop.JSONName))
	default:
		attribute = fmt.Sprintf("[JsonProperty(%s, Required = Required.Default, NullValueHandling = NullValueHandling.Ignore)]", Literal(prop.JSONName))
	}
	attributes := []string{attribute}
	if prop.Deprecated {
		attributes = append(attributes, "[System.Obsolete]")
	}

	accessor := "{ get; set; }"
	if prop.ReadOnly {
		accessor = "{ get; private set; }"
	}
	return propertyView{
		Comment:     summary(prop.Description),
		Attributes:  attributes,
		Declaration: fmt.Sprintf("public %s %s %s", TypeExpr(prop.Type, !prop.Required), prop.Name, accessor),
	}
}

func newMemberView(member codegen.EnumMember, idx int, stringEnum bool) memberView {
	if stringEnum {
		text, _ := member.Value.(string)
		return memberView{
			Attribute:   fmt.Sprintf("[EnumMember(Value = %s)]", Literal(text)),
			Declaration: fmt.Sprintf("%s = %d,", member.Name, idx),
		}
	}
	return memberView{Declaration: fmt.Sprintf("%s = %s,", member.Name, integerLiteral(member.Value))}
}

// TypeExpr renders ref as a C# type. optional marks a member that may be
// absent, which makes value types nullable.
func TypeExpr(ref codegen.TypeRef, optional bool) string {
	if ref.Kind == codegen.RefNamed && ref.NamedKind == codegen.KindAlias {
		ref = ref.Resolved()
	}
	expr, valueType := bareExpr(ref)
	if valueType && (ref.Nullable || optional) {
		return expr + "?"
	}
	return expr
}

func bareExpr(ref codegen.TypeRef) (string, bool) {
	switch ref.Kind {
	case codegen.RefNamed:
		if ref.NamedKind == codegen.KindAlias {
			return "object", false
		}
		return ref.Name, ref.NamedKind == codegen.KindEnum
	case codegen.RefPrimitive:
		return primitive(ref.Primitive, ref.Format)
	case codegen.RefArray:
		return "ICollection<" + elemExpr(ref.Elem) + ">", false
	case codegen.RefMap:
		return "IDictionary<string, " + elemExpr(ref.Elem) + ">", false
	default:
		return "object", false
	}
}

func elemExpr(elem *codegen.TypeRef) string {
	if elem == nil {
		return "object"
	}
	return TypeExpr(*elem, false)
}

func primitive(name, format string) (string, bool) {
	format = strings.ToLower(format)
	switch name {
	case "integer":
		if format == "int64" || format == "long" {
			return "long", true
		}
		return "int", true
	case "number":
		switch format {
		case "float":
			return "float", true
		case "decimal":
			return "decimal", true
		}
		return "double", true
	case "boolean":
		return "bool", true
	case "string":
		switch format {
		case "date-time", "date":
			return "System.DateTimeOffset", true
		case "time", "duration", "time-span":
			return "System.TimeSpan", true
		case "uuid", "guid":
			return "System.Guid", true
		case "uri":
			return "System.Uri", false
		case "byte", "binary", "base64":
			return "byte[]", false
		}
		return "string", false
	}
	return "object", false
}

// Literal quotes value as a regular C# string literal.
func Literal(value string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func integerLiteral(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func summary(lines []string) []string {
	if len(lines) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, "/// <summary>")
	for _, line := range lines {
		if line == "" {
			out = append(out, "///")
			continue
		}
		out = append(out, "/// "+xmlEscaper.Replace(line))
	}
	return append(out, "/// </summary>")
}
