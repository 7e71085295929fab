package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Parser turns a loaded document into a schema Set.
type Parser interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Parse(ctx context.Context, doc Document) (*Set, error)
}

// ParserRegistry stores parsers by name and picks one per document.
type ParserRegistry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback string
}

// NewParserRegistry creates an empty registry. fallback names the parser used
// when no parser detects a payload.
func NewParserRegistry(fallback string) *ParserRegistry {
	return &ParserRegistry{
		parsers:  make(map[string]Parser),
		fallback: normalizeParserName(fallback),
	}
}

// Register adds a parser by its Name(). Duplicate names return an error.
func (r *ParserRegistry) Register(parser Parser) error {
	if parser == nil {
		return fmt.Errorf("schema: parser is required")
	}
	name := normalizeParserName(parser.Name())
	if name == "" {
		return fmt.Errorf("schema: parser name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("schema: parser %q already registered", name)
	}
	r.parsers[name] = parser
	return nil
}

// MustRegister panics on registration failure.
func (r *ParserRegistry) MustRegister(parser Parser) {
	if err := r.Register(parser); err != nil {
		panic(err)
	}
}

// Get retrieves a parser by name.
func (r *ParserRegistry) Get(name string) (Parser, error) {
	key := normalizeParserName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.parsers[key]
	if !ok {
		return nil, fmt.Errorf("schema: parser %q not found", key)
	}
	return parser, nil
}

// List returns a sorted list of parser names.
func (r *ParserRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name identifies the registry when it is used as a Parser itself.
func (r *ParserRegistry) Name() string {
	return "auto"
}

// Detect reports whether any registered parser, or the fallback, accepts raw.
func (r *ParserRegistry) Detect(src Source, raw []byte) bool {
	parser, err := r.resolve(src, raw)
	return err == nil && parser != nil
}

// Parse dispatches doc to the single parser that detects it, or to the
// fallback parser when none does.
func (r *ParserRegistry) Parse(ctx context.Context, doc Document) (*Set, error) {
	parser, err := r.resolve(doc.Source(), doc.Raw())
	if err != nil {
		return nil, err
	}
	return parser.Parse(ctx, doc)
}

func (r *ParserRegistry) resolve(src Source, raw []byte) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)

	var matches []Parser
	for _, name := range names {
		if r.parsers[name].Detect(src, raw) {
			matches = append(matches, r.parsers[name])
		}
	}

	switch len(matches) {
	case 0:
		if parser, ok := r.parsers[r.fallback]; ok {
			return parser, nil
		}
		return nil, fmt.Errorf("schema: unable to detect format of %s", locationOf(src))
	case 1:
		return matches[0], nil
	default:
		matched := make([]string, 0, len(matches))
		for _, parser := range matches {
			matched = append(matched, parser.Name())
		}
		return nil, fmt.Errorf("schema: multiple parsers matched %s (%s)", locationOf(src), strings.Join(matched, ", "))
	}
}

func locationOf(src Source) string {
	if src == nil {
		return "document"
	}
	return src.Location()
}

func normalizeParserName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
