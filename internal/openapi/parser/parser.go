package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-schemagen/pkg/openapi"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Parser implements schema.Parser for OpenAPI 3 documents using kin-openapi.
// Every components.schemas entry becomes a definition; the set has no root.
type Parser struct {
	options pkgopenapi.ParserOptions
}

// Ensure the implementation satisfies the public interface.
var _ schema.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Name implements schema.Parser.
func (p *Parser) Name() string {
	return pkgopenapi.ParserName
}

// Detect implements schema.Parser.
func (p *Parser) Detect(_ schema.Source, raw []byte) bool {
	return pkgopenapi.Detect(raw)
}

// Parse converts the component schemas of doc into a schema.Set.
func (p *Parser) Parse(ctx context.Context, doc schema.Document) (*schema.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}
	if isSwagger(raw) {
		return nil, fmt.Errorf("openapi parser: %s: swagger 2.0 documents are not supported", doc.Location())
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.AllowExternalRefs,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load %s: %w", doc.Location(), err)
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate %s: %w", doc.Location(), err)
		}
	}

	set := schema.NewSet(doc.Location())
	if spec.Components == nil {
		return set, nil
	}
	for name, ref := range spec.Components.Schemas {
		set.Definitions[pkgopenapi.ComponentRefPrefix+name] = convertValue(ref)
	}
	return set, nil
}

func isSwagger(raw []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, swagger := probe["swagger"]
	_, openapi := probe["openapi"]
	return swagger && !openapi
}
