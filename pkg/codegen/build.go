package codegen

import (
	"errors"
	"fmt"
	"math"

	"github.com/goliatone/go-schemagen/pkg/naming"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// BuildOption customises Build for one target language.
type BuildOption func(*buildConfig)

type buildConfig struct {
	reserveOwner bool
	memberWords  []string
}

// WithOwnerReserved seeds every class's property scope with the class name,
// for languages where a member may not share its enclosing type's name.
func WithOwnerReserved() BuildOption {
	return func(cfg *buildConfig) {
		cfg.reserveOwner = true
	}
}

// WithMemberReservedWords seeds every property and enum member scope with
// words, typically the target language's keywords.
func WithMemberReservedWords(words ...string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.memberWords = append(cfg.memberWords, words...)
	}
}

// Build lowers set into a File. Names are assigned in a fixed order: the root
// type, then definitions sorted by key, then inline types in the order they
// are met while walking those. Every name is reserved in settings.Scope.
func Build(set *schema.Set, settings Settings, options ...BuildOption) (File, error) {
	if set == nil {
		return File{}, errors.New("codegen: schema set is nil")
	}
	cfg := buildConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := &builder{
		set:      set,
		settings: settings,
		cfg:      cfg,
		names:    make(map[string]namedType),
		aliases:  make(map[string]*TypeRef),
		aliasing: make(map[string]bool),
	}
	if b.settings.Types == nil {
		b.settings.Types = naming.NewTypeNamePolicy(nil)
	}
	if b.settings.Enums == nil {
		b.settings.Enums = naming.NewEnumNamePolicy(nil, naming.CasingPascal)
	}
	if b.settings.Scope == nil {
		b.settings.Scope = naming.NewScope()
	}

	if err := b.nameTopLevel(); err != nil {
		return File{}, err
	}
	if err := b.emitTopLevel(); err != nil {
		return File{}, err
	}

	return File{
		Namespace: settings.Namespace,
		Source:    set.DocumentPath,
		Types:     b.types,
	}, nil
}

// rootKey is the ref key that points at the document root.
const rootKey = "#"

type namedType struct {
	name string
	kind Kind
}

type builder struct {
	set      *schema.Set
	settings Settings
	cfg      buildConfig
	names    map[string]namedType
	types    []Type
	aliases  map[string]*TypeRef
	aliasing map[string]bool
}

func (b *builder) nameTopLevel() error {
	if root := b.set.Root; root != nil && !(root.Ref != "" && isPureRef(*root)) {
		kind := topLevelKind(*root)
		name := b.settings.Types.Generate(naming.TypeHint{
			Title:        root.Title,
			DocumentPath: b.set.DocumentPath,
		}, b.settings.Scope)
		b.names[rootKey] = namedType{name: name, kind: kind}
	}
	for _, key := range b.set.DefinitionKeys() {
		def := b.set.Definitions[key]
		if def.Ref != "" && isPureRef(def) {
			continue
		}
		name := b.settings.Types.Generate(naming.TypeHint{
			Hint:  schema.DefinitionName(key),
			Title: def.Title,
		}, b.settings.Scope)
		b.names[key] = namedType{name: name, kind: topLevelKind(def)}
	}
	return nil
}

func (b *builder) emitTopLevel() error {
	if named, ok := b.names[rootKey]; ok {
		if err := b.emit(rootKey, named, *b.set.Root); err != nil {
			return fmt.Errorf("codegen: %s: %w", b.set.DocumentPath, err)
		}
	}
	for _, key := range b.set.DefinitionKeys() {
		named, ok := b.names[key]
		if !ok {
			continue
		}
		if err := b.emit(key, named, b.set.Definitions[key]); err != nil {
			return fmt.Errorf("codegen: %s: %w", key, err)
		}
	}
	return nil
}

// emit appends the type for node. The slot is taken before members are
// walked so a type precedes the inline types it owns. key is empty for
// inline types.
func (b *builder) emit(key string, named namedType, node schema.Schema) error {
	idx := len(b.types)
	b.types = append(b.types, Type{})

	out := Type{
		Name:        named.name,
		Kind:        named.kind,
		Description: CleanDescription(node.Description),
		Deprecated:  node.Deprecated,
	}

	switch named.kind {
	case KindEnum:
		out.Members, out.StringEnum = b.enumMembers(node.Enum)
	case KindClass:
		if err := b.fillClass(&out, node); err != nil {
			return err
		}
	default:
		ref, err := b.aliasShape(key, named, node)
		if err != nil {
			return err
		}
		out.Alias = &ref
	}

	b.types[idx] = out
	return nil
}

func (b *builder) fillClass(out *Type, node schema.Schema) error {
	members := node
	required := append([]string(nil), node.Required...)
	props := make(map[string]schema.Schema, len(node.Properties))
	for name, prop := range node.Properties {
		props[name] = prop
	}

	parts := node.AllOf
	if node.Ref != "" {
		parts = append([]schema.Schema{{Ref: node.Ref}}, parts...)
	}
	baseIdx := singleRefIndex(parts)
	for idx, part := range parts {
		if idx == baseIdx {
			_, base, err := b.lookup(part.Ref)
			if err != nil {
				return err
			}
			if base.kind == KindClass {
				out.Base = base.name
				continue
			}
		}
		flat, err := b.flatten(part)
		if err != nil {
			return err
		}
		for name, prop := range flat.Properties {
			if _, exists := props[name]; !exists {
				props[name] = prop
			}
		}
		required = append(required, flat.Required...)
		if len(out.Description) == 0 {
			out.Description = CleanDescription(flat.Description)
		}
	}
	members.Properties = props
	members.Required = required

	scope := naming.NewScope(b.cfg.memberWords...)
	if b.cfg.reserveOwner {
		scope.Reserve(out.Name)
	}

	for _, jsonName := range members.PropertyNames() {
		prop := members.Properties[jsonName]
		ref, err := b.typeRef(prop, jsonName)
		if err != nil {
			return fmt.Errorf("property %q: %w", jsonName, err)
		}
		name := jsonName
		if b.settings.Properties != nil {
			name = b.settings.Properties.Generate(jsonName, scope)
		}
		out.Properties = append(out.Properties, Property{
			JSONName:    jsonName,
			Name:        name,
			Type:        ref,
			Required:    members.IsRequired(jsonName),
			Description: CleanDescription(prop.Description),
			ReadOnly:    prop.ReadOnly,
			Deprecated:  prop.Deprecated,
		})
	}
	return nil
}

// flatten returns the schema whose members an allOf entry contributes,
// following refs.
func (b *builder) flatten(part schema.Schema) (schema.Schema, error) {
	seen := make(map[string]bool)
	for part.Ref != "" {
		if seen[part.Ref] {
			return schema.Schema{}, fmt.Errorf("allOf ref cycle at %q", part.Ref)
		}
		seen[part.Ref] = true
		target, ok := b.resolve(part.Ref)
		if !ok {
			return schema.Schema{}, fmt.Errorf("unresolved ref %q", part.Ref)
		}
		part = target
	}
	return part, nil
}

func (b *builder) resolve(ref string) (schema.Schema, bool) {
	if ref == rootKey {
		if b.set.Root == nil {
			return schema.Schema{}, false
		}
		return *b.set.Root, true
	}
	return b.set.Definition(ref)
}

// lookup returns the key and named type a ref points at, following pure ref
// chains.
func (b *builder) lookup(ref string) (string, namedType, error) {
	seen := make(map[string]bool)
	for {
		if named, ok := b.names[ref]; ok {
			return ref, named, nil
		}
		if seen[ref] {
			return "", namedType{}, fmt.Errorf("ref cycle at %q", ref)
		}
		seen[ref] = true
		target, ok := b.resolve(ref)
		if !ok || target.Ref == "" {
			return "", namedType{}, fmt.Errorf("unresolved ref %q", ref)
		}
		ref = target.Ref
	}
}

// typeRef maps a property or element schema. Inline objects and enums become
// new named types using hint.
func (b *builder) typeRef(node schema.Schema, hint string) (TypeRef, error) {
	if node.Ref != "" {
		ref, err := b.namedRef(node.Ref)
		if err != nil {
			return TypeRef{}, err
		}
		ref.Nullable = ref.Nullable || node.Nullable
		return ref, nil
	}

	if kind := kindOf(node); kind != KindAlias {
		name := b.settings.Types.Generate(naming.TypeHint{Hint: hint, Title: node.Title}, b.settings.Scope)
		named := namedType{name: name, kind: kind}
		if err := b.emit("", named, node); err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: RefNamed, Name: name, NamedKind: kind, Nullable: node.Nullable}, nil
	}
	return b.shapeRef(node, hint)
}

// shapeRef maps a node that does not get a name of its own.
func (b *builder) shapeRef(node schema.Schema, hint string) (TypeRef, error) {
	if node.Ref != "" {
		return b.typeRef(node, hint)
	}

	variants := node.OneOf
	if len(variants) == 0 {
		variants = node.AnyOf
	}
	if len(variants) > 0 {
		refs := make([]TypeRef, 0, len(variants))
		for _, variant := range variants {
			ref, err := b.typeRef(variant, hint)
			if err != nil {
				return TypeRef{}, err
			}
			refs = append(refs, ref)
		}
		if len(refs) == 1 {
			refs[0].Nullable = refs[0].Nullable || node.Nullable
			return refs[0], nil
		}
		return TypeRef{Kind: RefUnion, Variants: refs, Nullable: node.Nullable}, nil
	}

	if len(node.AllOf) == 1 {
		ref, err := b.typeRef(node.AllOf[0], hint)
		if err != nil {
			return TypeRef{}, err
		}
		ref.Nullable = ref.Nullable || node.Nullable
		return ref, nil
	}

	switch node.Type {
	case "array":
		elem := TypeRef{Kind: RefAny}
		if node.Items != nil {
			ref, err := b.typeRef(*node.Items, hint)
			if err != nil {
				return TypeRef{}, err
			}
			elem = ref
		}
		return TypeRef{Kind: RefArray, Elem: &elem, Nullable: node.Nullable}, nil
	case "object", "":
		if node.AdditionalProperties != nil {
			elem, err := b.typeRef(*node.AdditionalProperties, hint)
			if err != nil {
				return TypeRef{}, err
			}
			return TypeRef{Kind: RefMap, Elem: &elem, Nullable: node.Nullable}, nil
		}
		if node.Type == "object" {
			values := TypeRef{Kind: RefAny}
			return TypeRef{Kind: RefMap, Elem: &values, Nullable: node.Nullable}, nil
		}
		return TypeRef{Kind: RefAny, Nullable: node.Nullable}, nil
	default:
		return TypeRef{Kind: RefPrimitive, Primitive: node.Type, Format: node.Format, Nullable: node.Nullable}, nil
	}
}

func (b *builder) namedRef(ref string) (TypeRef, error) {
	key, named, err := b.lookup(ref)
	if err != nil {
		return TypeRef{}, err
	}
	out := TypeRef{Kind: RefNamed, Name: named.name, NamedKind: named.kind}
	if named.kind != KindAlias {
		return out, nil
	}
	target, ok := b.resolve(key)
	if !ok {
		return TypeRef{}, fmt.Errorf("unresolved ref %q", key)
	}
	shape, err := b.aliasShape(key, named, target)
	if err != nil {
		return TypeRef{}, err
	}
	out.Target = &shape
	return out, nil
}

// aliasShape computes the aliased shape of a named alias once, so inline
// types below it are emitted a single time. A self-referencing alias
// resolves to any at the point of recursion.
func (b *builder) aliasShape(key string, named namedType, node schema.Schema) (TypeRef, error) {
	if key == "" {
		return b.shapeRef(node, named.name)
	}
	if cached, ok := b.aliases[key]; ok {
		return *cached, nil
	}
	if b.aliasing[key] {
		return TypeRef{Kind: RefAny}, nil
	}
	b.aliasing[key] = true
	shape, err := b.shapeRef(node, named.name)
	delete(b.aliasing, key)
	if err != nil {
		return TypeRef{}, err
	}
	b.aliases[key] = &shape
	return shape, nil
}

// enumMembers names each enum value and reports whether all values are
// strings.
func (b *builder) enumMembers(values []any) ([]EnumMember, bool) {
	scope := naming.NewScope(b.cfg.memberWords...)
	members := make([]EnumMember, 0, len(values))
	allStrings := true
	for _, value := range values {
		if _, ok := value.(string); !ok {
			allStrings = false
		}
		members = append(members, EnumMember{
			Name:  b.settings.Enums.Generate(value, scope),
			Value: value,
		})
	}
	return members, allStrings
}

// kindOf decides how a node is represented once it has a name.
func kindOf(node schema.Schema) Kind {
	if node.IsEnum() && enumerable(node.Enum) {
		return KindEnum
	}
	if hasMembers(node) {
		return KindClass
	}
	return KindAlias
}

// topLevelKind is kindOf for roots and definitions, where a bare object
// schema still names a class.
func topLevelKind(node schema.Schema) Kind {
	kind := kindOf(node)
	if kind == KindAlias && node.Type == "object" && node.AdditionalProperties == nil &&
		len(node.OneOf) == 0 && len(node.AnyOf) == 0 && len(node.AllOf) == 0 {
		return KindClass
	}
	return kind
}

// hasMembers reports whether node describes an object with named members,
// directly or through allOf composition.
func hasMembers(node schema.Schema) bool {
	if node.Type != "" && node.Type != "object" {
		return false
	}
	if len(node.Properties) > 0 {
		return true
	}
	if len(node.AllOf) > 1 {
		return true
	}
	for _, part := range node.AllOf {
		if len(part.Properties) > 0 {
			return true
		}
	}
	return false
}

// enumerable reports whether values can form a language enum: all strings or
// all integers.
func enumerable(values []any) bool {
	texts, integers := 0, 0
	for _, value := range values {
		switch v := value.(type) {
		case string:
			texts++
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				integers++
			}
		case int, int64:
			integers++
		}
	}
	return texts == len(values) || integers == len(values)
}

func isPureRef(node schema.Schema) bool {
	return len(node.Properties) == 0 && len(node.Enum) == 0 && len(node.AllOf) == 0 &&
		len(node.OneOf) == 0 && len(node.AnyOf) == 0 && node.Items == nil
}

// singleRefIndex returns the index of the only ref entry in parts, or -1.
func singleRefIndex(parts []schema.Schema) int {
	found := -1
	for idx, part := range parts {
		if part.Ref == "" {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = idx
	}
	return found
}
