package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxDefinitions   = 4096
)

// ResolveOptions configures how external $ref targets are bundled.
type ResolveOptions struct {
	// AllowHTTPRefs toggles HTTP/HTTPS ref resolution.
	AllowHTTPRefs bool
	// AllowPathTraversal permits refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of any single referenced document.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of unique documents loaded while bundling.
	MaxDocuments int
	// MaxDefinitions caps the number of definitions one set may carry.
	MaxDefinitions int
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if o.MaxDocuments <= 0 {
		o.MaxDocuments = defaultMaxDocuments
	}
	if o.MaxDefinitions <= 0 {
		o.MaxDefinitions = defaultMaxDefinitions
	}
	return o
}

// bundleSession converts one root document and every document its refs
// reach into a schema.Set. Refs stay symbolic, so cycles terminate.
type bundleSession struct {
	ctx     context.Context
	loader  Loader
	opts    ResolveOptions
	set     *schema.Set
	root    *bundleDocument
	docs    map[string]*bundleDocument
	pending []string
	queued  map[string]struct{}
}

type bundleDocument struct {
	// key prefixes canonical refs: "" for the root, a root-relative path for
	// sibling files, the absolute URL for remote documents.
	key      string
	identity string
	kind     schema.SourceKind
	location string
	baseDir  string
	data     map[string]any
	anchors  map[string]string
}

func newBundleSession(ctx context.Context, loader Loader, opts ResolveOptions, doc schema.Document, payload map[string]any) (*bundleSession, error) {
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}
	opts = opts.withDefaults()
	if int64(doc.Size()) > opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", doc.Size())
	}

	s := &bundleSession{
		ctx:    ctx,
		loader: loader,
		opts:   opts,
		set:    schema.NewSet(doc.Location()),
		docs:   make(map[string]*bundleDocument),
		queued: make(map[string]struct{}),
	}

	identity, location, baseDir, err := canonicalLocation(doc.Source())
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "#", anchors); err != nil {
		return nil, err
	}
	s.root = &bundleDocument{
		identity: identity,
		kind:     doc.Source().Kind(),
		location: location,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
	}
	s.docs[identity] = s.root
	return s, nil
}

// bundle converts the root and drains the queue of referenced definitions.
func (s *bundleSession) bundle() (*schema.Set, error) {
	root, err := s.convert(s.root, s.root.data, "#")
	if err != nil {
		return nil, err
	}
	if describesType(root) {
		s.set.Root = &root
	}

	for len(s.pending) > 0 {
		key := s.pending[0]
		s.pending = s.pending[1:]
		if _, done := s.set.Definitions[key]; done {
			continue
		}
		docKey, pointer := schema.SplitRef(key)
		doc := s.documentByKey(docKey)
		if doc == nil {
			return nil, fmt.Errorf("jsonschema resolver: unknown document for %q", key)
		}
		node, err := resolveJSONPointer(doc.data, pointer)
		if err != nil {
			return nil, err
		}
		if err := s.define(doc, "#"+pointer, node); err != nil {
			return nil, err
		}
	}
	return s.set, nil
}

// define converts node and stores it under the canonical key derived from
// doc and pointer.
func (s *bundleSession) define(doc *bundleDocument, pointer string, node any) error {
	key := doc.key + pointer
	if _, exists := s.set.Definitions[key]; exists {
		return nil
	}
	if len(s.set.Definitions) >= s.opts.MaxDefinitions {
		return fmt.Errorf("jsonschema resolver: exceeded max definitions (%d)", s.opts.MaxDefinitions)
	}
	// Reserve the key before converting so self references do not requeue it.
	s.set.Definitions[key] = schema.Schema{}
	converted, err := s.convert(doc, node, pointer)
	if err != nil {
		delete(s.set.Definitions, key)
		return err
	}
	s.set.Definitions[key] = converted
	return nil
}

// reference canonicalizes ref relative to doc, loading the target document
// when needed, and queues the target for conversion.
func (s *bundleSession) reference(doc *bundleDocument, ref string) (string, error) {
	refPath, fragment := schema.SplitRef(ref)
	target := doc
	if refPath != "" {
		loaded, err := s.load(doc, refPath)
		if err != nil {
			return "", err
		}
		target = loaded
	}

	pointer, err := target.pointer(fragment)
	if err != nil {
		return "", err
	}
	key := target.key + pointer
	if target == s.root && pointer == "#" {
		// Whole-root refs point back at the root type.
		return key, nil
	}
	if _, done := s.set.Definitions[key]; !done {
		if _, queued := s.queued[key]; !queued {
			s.queued[key] = struct{}{}
			s.pending = append(s.pending, key)
		}
	}
	return key, nil
}

func (d *bundleDocument) pointer(fragment string) (string, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return "#", nil
	}
	if strings.HasPrefix(fragment, "/") {
		return "#" + fragment, nil
	}
	pointer, ok := d.anchors[fragment]
	if !ok {
		return "", fmt.Errorf("jsonschema resolver: anchor %q not found", fragment)
	}
	return pointer, nil
}

func (s *bundleSession) documentByKey(key string) *bundleDocument {
	for _, doc := range s.docs {
		if doc.key == key {
			return doc
		}
	}
	return nil
}

func (s *bundleSession) load(doc *bundleDocument, refPath string) (*bundleDocument, error) {
	parsed, err := url.Parse(refPath)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid ref %q", refPath)
	}

	var src Source
	switch {
	case parsed.Scheme == "http" || parsed.Scheme == "https":
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", refPath)
		}
		src = SourceFromURL(parsed.String())
	case parsed.Scheme == "file":
		src = SourceFromFile(filepath.FromSlash(parsed.Path))
	case parsed.Scheme != "":
		return nil, fmt.Errorf("jsonschema resolver: unsupported ref scheme %q", parsed.Scheme)
	default:
		src, err = s.resolveRelativeSource(doc, parsed.Path)
		if err != nil {
			return nil, err
		}
	}

	identity, location, baseDir, err := canonicalLocation(src)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.docs[identity]; ok {
		return cached, nil
	}
	if len(s.docs) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: exceeded max documents (%d)", s.opts.MaxDocuments)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("jsonschema resolver: no loader for external ref %q", refPath)
	}

	loaded, err := s.loader.Load(s.ctx, src)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: load %s: %w", src.Location(), err)
	}
	if int64(loaded.Size()) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", loaded.Size())
	}
	payload, err := decodeDocument(loaded.Raw())
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "#", anchors); err != nil {
		return nil, err
	}

	out := &bundleDocument{
		key:      s.documentKey(src.Kind(), location),
		identity: identity,
		kind:     src.Kind(),
		location: location,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
	}
	s.docs[identity] = out
	return out, nil
}

// documentKey names an external document relative to the root so canonical
// refs stay stable across machines.
func (s *bundleSession) documentKey(kind schema.SourceKind, location string) string {
	switch {
	case kind == SourceKindFile && s.root.kind == SourceKindFile:
		if rel, err := filepath.Rel(s.root.baseDir, location); err == nil {
			return filepath.ToSlash(rel)
		}
	case kind == SourceKindFS && s.root.kind == SourceKindFS:
		base := strings.TrimPrefix(path.Clean(s.root.baseDir), "/")
		if base == "." || base == "" {
			return location
		}
		if strings.HasPrefix(location, base+"/") {
			return strings.TrimPrefix(location, base+"/")
		}
	}
	return filepath.ToSlash(location)
}

func (s *bundleSession) resolveRelativeSource(doc *bundleDocument, refPath string) (Source, error) {
	switch doc.kind {
	case SourceKindFile:
		resolved, err := s.cleanFilePath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromFile(resolved), nil
	case SourceKindFS:
		resolved, err := s.cleanFSPath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromFS(resolved), nil
	case SourceKindURL:
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", refPath)
		}
		base, err := url.Parse(doc.location)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromURL(base.ResolveReference(rel).String()), nil
	default:
		return nil, errors.New("jsonschema resolver: unsupported source kind")
	}
}

func canonicalLocation(src Source) (string, string, string, error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema resolver: source is nil")
	}
	location := src.Location()
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "file:" + abs, abs, filepath.Dir(abs), nil
	case SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned), nil
	case SourceKindURL:
		return "url:" + location, location, path.Dir(location), nil
	default:
		return "", "", "", errors.New("jsonschema resolver: unsupported source kind")
	}
}

func (s *bundleSession) cleanFilePath(baseDir, refPath string) (string, error) {
	candidate := filepath.FromSlash(refPath)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, candidate)
	}
	candidate = filepath.Clean(candidate)
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	rel, err := filepath.Rel(s.root.baseDir, candidate)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
	}
	return candidate, nil
}

func (s *bundleSession) cleanFSPath(baseDir, refPath string) (string, error) {
	candidate := path.Clean(path.Join(baseDir, refPath))
	candidate = strings.TrimPrefix(candidate, "/")
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := strings.TrimPrefix(path.Clean(s.root.baseDir), "/")
	if root == "." {
		root = ""
	}
	if root == "" {
		if candidate == ".." || strings.HasPrefix(candidate, "../") {
			return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
		}
		return candidate, nil
	}
	if candidate == root || strings.HasPrefix(candidate, root+"/") {
		return candidate, nil
	}
	return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
}

func resolveJSONPointer(root any, pointer string) (any, error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q", pointer)
	}

	current := root
	for _, part := range strings.Split(pointer, "/")[1:] {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[decoded]
			if !ok {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("jsonschema resolver: pointer %q invalid", pointer)
		}
	}
	return current, nil
}

func indexAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if raw, ok := typed["$anchor"]; ok {
			name, ok := raw.(string)
			name = strings.TrimSpace(name)
			if ok && name != "" {
				if _, exists := anchors[name]; exists {
					return fmt.Errorf("jsonschema resolver: duplicate anchor %q", name)
				}
				anchors[name] = pointer
			}
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			if err := indexAnchors(value, joinPath(pointer, key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			if err := indexAnchors(value, joinPath(pointer, strconv.Itoa(idx)), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// describesType reports whether a root node carries a shape of its own, as
// opposed to a bare container of definitions.
func describesType(node schema.Schema) bool {
	return node.Type != "" ||
		node.Ref != "" ||
		len(node.Properties) > 0 ||
		len(node.Enum) > 0 ||
		node.Items != nil ||
		node.AdditionalProperties != nil ||
		len(node.AllOf) > 0 ||
		len(node.OneOf) > 0 ||
		len(node.AnyOf) > 0
}
