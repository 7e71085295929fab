package codegen

// Kind classifies a generated type.
type Kind string

const (
	KindClass Kind = "class"
	KindEnum  Kind = "enum"
	// KindAlias names a non-object shape such as a primitive, array, map or
	// union. Languages without aliases inline the target instead.
	KindAlias Kind = "alias"
)

// RefKind classifies a type reference.
type RefKind string

const (
	RefAny       RefKind = "any"
	RefPrimitive RefKind = "primitive"
	RefNamed     RefKind = "named"
	RefArray     RefKind = "array"
	RefMap       RefKind = "map"
	RefUnion     RefKind = "union"
)

// File is the language-neutral content of one generated source file.
type File struct {
	Namespace string `json:"namespace"`
	Source    string `json:"source"`
	Types     []Type `json:"types"`
}

// Type is one named type.
type Type struct {
	Name        string       `json:"name"`
	Kind        Kind         `json:"kind"`
	Description []string     `json:"description,omitempty"`
	Base        string       `json:"base,omitempty"`
	Properties  []Property   `json:"properties,omitempty"`
	Members     []EnumMember `json:"members,omitempty"`
	StringEnum  bool         `json:"stringEnum,omitempty"`
	Alias       *TypeRef     `json:"alias,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty"`
}

// Property is one member of a class.
type Property struct {
	// JSONName is the key on the wire.
	JSONName string `json:"jsonName"`
	// Name is the identifier the naming policy produced, or JSONName when no
	// property policy was supplied.
	Name        string   `json:"name"`
	Type        TypeRef  `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Description []string `json:"description,omitempty"`
	ReadOnly    bool     `json:"readOnly,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
}

// EnumMember is one value of an enum.
type EnumMember struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// TypeRef describes the type of a property, array element or alias.
type TypeRef struct {
	Kind      RefKind `json:"kind"`
	Primitive string  `json:"primitive,omitempty"`
	Format    string  `json:"format,omitempty"`
	Name      string  `json:"name,omitempty"`
	// NamedKind is the Kind of the referenced type for RefNamed.
	NamedKind Kind `json:"namedKind,omitempty"`
	// Target is the aliased shape when Name refers to a KindAlias type.
	Target   *TypeRef  `json:"target,omitempty"`
	Elem     *TypeRef  `json:"elem,omitempty"`
	Variants []TypeRef `json:"variants,omitempty"`
	Nullable bool      `json:"nullable,omitempty"`
}

// Resolved follows alias targets and returns the underlying shape.
func (r TypeRef) Resolved() TypeRef {
	current := r
	for depth := 0; current.Kind == RefNamed && current.Target != nil && depth < 32; depth++ {
		nullable := current.Nullable
		current = *current.Target
		current.Nullable = current.Nullable || nullable
	}
	return current
}
