package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultDraft is the dialect assumed when a document omits $schema. Draft 4
// is the most permissive of the supported dialects for legacy keywords such
// as boolean exclusiveMinimum.
const DefaultDraft = "4"

// ErrUnknownDialect reports a $schema that names none of the built-in
// meta-schemas. The parser skips validation for such documents.
var ErrUnknownDialect = errors.New("jsonschema: unknown $schema dialect")

func draftFor(name string) (*santhosh.Draft, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "draft") {
	case "7", "-07", "07":
		return santhosh.Draft7, nil
	case "", "4", "-04", "04":
		return santhosh.Draft4, nil
	case "6", "-06", "06":
		return santhosh.Draft6, nil
	case "2019", "2019-09":
		return santhosh.Draft2019, nil
	case "2020", "2020-12":
		return santhosh.Draft2020, nil
	default:
		return nil, fmt.Errorf("jsonschema: unknown draft %q", name)
	}
}

// dialectDraft maps a $schema URI onto a built-in draft. Scheme, case and an
// empty fragment are ignored.
func dialectDraft(uri string) (*santhosh.Draft, bool) {
	id := strings.ToLower(strings.TrimSpace(uri))
	id = strings.TrimSuffix(id, "#")
	id = strings.TrimPrefix(strings.TrimPrefix(id, "http://"), "https://")
	switch id {
	case "json-schema.org/draft-04/schema":
		return santhosh.Draft4, true
	case "json-schema.org/draft-06/schema":
		return santhosh.Draft6, true
	case "json-schema.org/draft-07/schema":
		return santhosh.Draft7, true
	case "json-schema.org/draft/2019-09/schema":
		return santhosh.Draft2019, true
	case "json-schema.org/draft/2020-12/schema", "json-schema.org/schema":
		return santhosh.Draft2020, true
	default:
		return nil, false
	}
}

// validateDocument compiles doc with its meta-schema. Compilation fails when
// the document is not a valid schema for its dialect or when a $ref target
// cannot be loaded. A $schema naming no built-in draft yields
// ErrUnknownDialect; the meta-schema itself is never fetched.
func validateDocument(ctx context.Context, loader Loader, doc Document, draftName string, allowHTTP bool) error {
	draft, err := draftFor(draftName)
	if err != nil {
		return err
	}

	location, err := resourceURL(doc.Source())
	if err != nil {
		return err
	}
	instance, err := santhosh.UnmarshalJSON(bytes.NewReader(doc.Raw()))
	if err != nil {
		return fmt.Errorf("jsonschema: decode %s: %w", doc.Location(), err)
	}
	if object, ok := instance.(map[string]any); ok {
		if dialect, ok := object["$schema"].(string); ok && strings.TrimSpace(dialect) != "" {
			declared, known := dialectDraft(dialect)
			if !known {
				return fmt.Errorf("%w %q in %s", ErrUnknownDialect, dialect, doc.Location())
			}
			draft = declared
			delete(object, "$schema")
		}
	}

	compiler := santhosh.NewCompiler()
	compiler.DefaultDraft(draft)
	compiler.UseLoader(&urlLoader{ctx: ctx, loader: loader, allowHTTP: allowHTTP})
	if err := compiler.AddResource(location, instance); err != nil {
		return fmt.Errorf("jsonschema: add resource %s: %w", doc.Location(), err)
	}
	if _, err := compiler.Compile(location); err != nil {
		return fmt.Errorf("jsonschema: validate %s: %w", doc.Location(), err)
	}
	return nil
}

// resourceURL maps a Source onto the URL space the compiler resolves refs in.
// fs.FS members use a private "fs" scheme.
func resourceURL(src Source) (string, error) {
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(src.Location())
		if err != nil {
			return "", err
		}
		path := filepath.ToSlash(abs)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return (&url.URL{Scheme: "file", Path: path}).String(), nil
	case SourceKindFS:
		return (&url.URL{Scheme: "fs", Path: "/" + strings.TrimPrefix(src.Location(), "/")}).String(), nil
	case SourceKindURL:
		return src.Location(), nil
	default:
		return "", fmt.Errorf("jsonschema: unsupported source kind %q", src.Kind())
	}
}

// urlLoader adapts Loader to the compiler's URLLoader contract.
type urlLoader struct {
	ctx       context.Context
	loader    Loader
	allowHTTP bool
}

func (l *urlLoader) Load(raw string) (any, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	var src Source
	switch parsed.Scheme {
	case "file":
		src = SourceFromFile(filepath.FromSlash(parsed.Path))
	case "fs":
		src = SourceFromFS(strings.TrimPrefix(parsed.Path, "/"))
	case "http", "https":
		if !l.allowHTTP {
			return nil, fmt.Errorf("jsonschema: http refs disabled (%s)", raw)
		}
		parsed.Fragment = ""
		src = SourceFromURL(parsed.String())
	default:
		return nil, fmt.Errorf("jsonschema: unsupported ref scheme %q", parsed.Scheme)
	}
	if l.loader == nil {
		return nil, fmt.Errorf("jsonschema: no loader for %s", raw)
	}

	doc, err := l.loader.Load(l.ctx, src)
	if err != nil {
		return nil, err
	}
	return santhosh.UnmarshalJSON(bytes.NewReader(doc.Raw()))
}
