package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// ParserName identifies the JSON Schema parser in a schema.ParserRegistry.
const ParserName = "jsonschema"

var _ schema.Parser = (*Parser)(nil)

// Parser converts JSON Schema documents into schema.Set values. External refs
// are loaded through the configured Loader and bundled into the set.
type Parser struct {
	loader   Loader
	resolve  ResolveOptions
	validate bool
	draft    string
	logger   log.Logger
}

// ParserOption customises a Parser.
type ParserOption func(*Parser)

// WithResolveOptions overrides the bundler guardrails.
func WithResolveOptions(opts ResolveOptions) ParserOption {
	return func(p *Parser) {
		p.resolve = opts
	}
}

// WithValidation toggles meta-schema validation before conversion.
func WithValidation(enabled bool) ParserOption {
	return func(p *Parser) {
		p.validate = enabled
	}
}

// WithLogger sets the logger used for non-fatal findings such as a skipped
// meta-schema validation.
func WithLogger(logger log.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDefaultDraft selects the dialect assumed for documents without a
// $schema keyword. Accepted values: "4", "6", "7", "2019-09", "2020-12".
func WithDefaultDraft(draft string) ParserOption {
	return func(p *Parser) {
		p.draft = strings.TrimSpace(draft)
	}
}

// NewParser constructs a parser. A nil loader restricts the parser to
// self-contained documents.
func NewParser(loader Loader, options ...ParserOption) *Parser {
	p := &Parser{
		loader:   loader,
		validate: true,
		draft:    DefaultDraft,
		logger:   log.NewNopLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Name implements schema.Parser.
func (p *Parser) Name() string {
	return ParserName
}

// Detect reports whether raw looks like a JSON Schema document: a JSON object
// that is not an OpenAPI or Swagger description.
func (p *Parser) Detect(_ Source, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	if _, ok := probe["openapi"]; ok {
		return false
	}
	if _, ok := probe["swagger"]; ok {
		return false
	}
	return true
}

// Parse decodes, validates and bundles doc.
func (p *Parser) Parse(ctx context.Context, doc Document) (*schema.Set, error) {
	if p == nil {
		return nil, errors.New("jsonschema: parser is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema: document source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := decodeDocument(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.Location())
	}

	loader := newCachingLoader(p.loader)
	if p.validate {
		err := validateDocument(ctx, loader, doc, p.draft, p.resolve.AllowHTTPRefs)
		switch {
		case errors.Is(err, ErrUnknownDialect):
			level.Warn(p.logger).Log("msg", "skipping meta-schema validation", "document", doc.Location(), "err", err)
		case err != nil:
			return nil, err
		}
	}

	session, err := newBundleSession(ctx, loader, p.resolve, doc, payload)
	if err != nil {
		return nil, err
	}
	set, err := session.bundle()
	if err != nil {
		return nil, fmt.Errorf("jsonschema: parse %s: %w", doc.Location(), err)
	}
	return set, nil
}

// cachingLoader memoizes documents for the lifetime of one Parse call so
// validation and bundling read each external file once.
type cachingLoader struct {
	next  Loader
	cache map[string]Document
}

func newCachingLoader(next Loader) Loader {
	if next == nil {
		return nil
	}
	return &cachingLoader{next: next, cache: make(map[string]Document)}
}

func (c *cachingLoader) Load(ctx context.Context, src Source) (Document, error) {
	key := fmt.Sprintf("%s:%s", src.Kind(), src.Location())
	if doc, ok := c.cache[key]; ok {
		return doc, nil
	}
	doc, err := c.next.Load(ctx, src)
	if err != nil {
		return Document{}, err
	}
	c.cache[key] = doc
	return doc, nil
}
