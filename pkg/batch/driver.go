package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	internalLoader "github.com/goliatone/go-schemagen/internal/jsonschema/loader"
	internalOpenAPI "github.com/goliatone/go-schemagen/internal/openapi/parser"
	"github.com/goliatone/go-schemagen/pkg/codegen"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/naming"
	pkgopenapi "github.com/goliatone/go-schemagen/pkg/openapi"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

const (
	// DefaultNamespace is the base namespace when a request carries none.
	DefaultNamespace = "Root"

	// DefaultFetchTimeout bounds the remote schema download.
	DefaultFetchTimeout = 30 * time.Second
)

// Option customises the driver configuration.
type Option func(*Driver)

// WithFs sets the filesystem schemas are read from and output is written to.
func WithFs(files afero.Fs) Option {
	return func(d *Driver) {
		d.fs = files
	}
}

// WithLoader injects the loader used for schema files and the remote fetch.
// It must read from the same filesystem as the driver.
func WithLoader(loader jsonschema.Loader) Option {
	return func(d *Driver) {
		d.loader = loader
	}
}

// WithParser injects the parser applied to every schema file.
func WithParser(parser schema.Parser) Option {
	return func(d *Driver) {
		d.parser = parser
	}
}

// WithLogger sets the go-kit logger for progress and failures.
func WithLogger(logger log.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithOnError selects the per-file failure policy.
func WithOnError(policy OnError) Option {
	return func(d *Driver) {
		d.onError = policy
	}
}

// WithPrompter sets the prompter used by OnErrorPrompt.
func WithPrompter(prompter Prompter) Option {
	return func(d *Driver) {
		d.prompter = prompter
	}
}

// WithExclude skips schema files whose path relative to the schema root
// matches one of the doublestar patterns, e.g. "legacy/**" or "**/*.draft.json".
func WithExclude(patterns ...string) Option {
	return func(d *Driver) {
		d.exclude = append(d.exclude, patterns...)
	}
}

// WithNaming sets the name policies handed to every generator. Nil policies
// keep the generator defaults.
func WithNaming(types *naming.TypeNamePolicy, properties *naming.PropertyNamePolicy, enums *naming.EnumNamePolicy) Option {
	return func(d *Driver) {
		d.types = types
		d.properties = properties
		d.enums = enums
	}
}

// WithFetchTimeout bounds the remote schema download.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.fetchTimeout = timeout
	}
}

// Driver walks a schema root and writes generated sources for each target.
type Driver struct {
	fs           afero.Fs
	loader       jsonschema.Loader
	parser       schema.Parser
	logger       log.Logger
	onError      OnError
	prompter     Prompter
	exclude      []string
	types        *naming.TypeNamePolicy
	properties   *naming.PropertyNamePolicy
	enums        *naming.EnumNamePolicy
	fetchTimeout time.Duration
}

// New constructs a Driver. Missing collaborators default to the OS
// filesystem, the built-in loader and a parser registry that handles OpenAPI
// and JSON Schema documents.
func New(options ...Option) (*Driver, error) {
	d := &Driver{
		onError:      OnErrorStop,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}

	if d.fs == nil {
		d.fs = afero.NewOsFs()
	}
	if d.loader == nil {
		d.loader = internalLoader.New(jsonschema.NewLoaderOptions(
			jsonschema.WithFiles(d.fs),
			jsonschema.WithHTTPFallback(d.fetchTimeout),
		))
	}
	if d.logger == nil {
		d.logger = log.NewNopLogger()
	}
	if d.parser == nil {
		d.parser = NewParserRegistry(d.loader, jsonschema.WithLogger(d.logger))
	}
	if _, err := ParseOnError(string(d.onError), OnErrorStop); err != nil {
		return nil, err
	}
	for _, pattern := range d.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("batch: invalid exclude pattern %q", pattern)
		}
	}
	return d, nil
}

// NewParserRegistry returns a registry that routes OpenAPI 3 documents to the
// OpenAPI parser and everything else to the JSON Schema parser.
func NewParserRegistry(loader jsonschema.Loader, options ...jsonschema.ParserOption) *schema.ParserRegistry {
	registry := schema.NewParserRegistry(jsonschema.ParserName)
	registry.MustRegister(jsonschema.NewParser(loader, options...))
	registry.MustRegister(internalOpenAPI.New(pkgopenapi.NewParserOptions()))
	return registry
}

// Target pairs a generator with its output directory.
type Target struct {
	Generator codegen.Generator
	Dir       string
}

// Request describes one run.
type Request struct {
	// SchemaDir is the schema root. Ignored when RemoteURL is set.
	SchemaDir string
	// RemoteURL names a single remote schema to generate from.
	RemoteURL string
	// Namespace is the base namespace. Empty means DefaultNamespace.
	Namespace string
	Targets   []Target
}

// Validate checks the request before any I/O happens.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SchemaDir) == "" && strings.TrimSpace(r.RemoteURL) == "" {
		return ErrNoSource
	}
	if len(r.Targets) == 0 {
		return ErrNoTarget
	}
	for idx, target := range r.Targets {
		if target.Generator == nil {
			return fmt.Errorf("batch: target %d has no generator", idx)
		}
		if strings.TrimSpace(target.Dir) == "" {
			return fmt.Errorf("batch: target %q has no directory", target.Generator.Name())
		}
	}
	return nil
}

// genScope is one folder processed with its own namespace and type names.
type genScope struct {
	dir       string
	rel       string
	namespace string
}

// Run processes the root scope, then each immediate subfolder in name order.
// Files written before an abort are kept.
func (d *Driver) Run(ctx context.Context, req Request) (Report, error) {
	if ctx == nil {
		return Report{}, errors.New("batch: context is required")
	}
	if err := req.Validate(); err != nil {
		return Report{}, err
	}

	namespace := strings.TrimSpace(req.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}

	root := filepath.Clean(req.SchemaDir)
	subfolders := true
	if strings.TrimSpace(req.RemoteURL) != "" {
		dir, cleanup, err := d.fetchRemote(ctx, req.RemoteURL)
		if err != nil {
			return Report{}, err
		}
		defer cleanup()
		root = dir
		subfolders = false
	}

	scopes := []genScope{{dir: root, namespace: namespace}}
	if subfolders {
		names, err := d.subfolders(root)
		if err != nil {
			return Report{}, err
		}
		for _, name := range names {
			scopes = append(scopes, genScope{
				dir:       filepath.Join(root, name),
				rel:       name,
				namespace: namespace + "." + namespaceSegment(name),
			})
		}
	}

	report := Report{}
	for _, sc := range scopes {
		result, err := d.processScope(ctx, sc, req.Targets)
		report.Scopes = append(report.Scopes, result)
		if err != nil {
			return report, err
		}
	}

	level.Info(d.logger).Log("msg", "generation finished", "generated", report.Generated(), "skipped", report.Skipped())
	return report, nil
}

func (d *Driver) processScope(ctx context.Context, sc genScope, targets []Target) (ScopeReport, error) {
	result := ScopeReport{Folder: sc.dir, Namespace: sc.namespace}

	for _, target := range targets {
		if err := d.fs.MkdirAll(filepath.Join(target.Dir, sc.rel), 0o755); err != nil {
			return result, fmt.Errorf("batch: create %s: %w", filepath.Join(target.Dir, sc.rel), err)
		}
	}

	files, err := d.schemaFiles(sc)
	if err != nil {
		return result, err
	}
	level.Info(d.logger).Log("msg", "found json schema files", "folder", sc.dir, "namespace", sc.namespace, "count", len(files))

	scopes := make([]*naming.Scope, len(targets))
	for idx := range scopes {
		scopes[idx] = naming.NewScope()
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		level.Debug(d.logger).Log("msg", "generating", "file", path)
		written, next, err := d.generateOne(ctx, sc, path, targets, scopes)
		result.Written = append(result.Written, written...)
		if err != nil {
			level.Error(d.logger).Log("msg", "generation failed", "file", path, "err", err)
			if abort := d.handleFailure(ctx, path, err); abort != nil {
				result.Failed = path
				return result, abort
			}
			result.Skipped = append(result.Skipped, path)
			continue
		}
		scopes = next
		result.Generated++
	}
	return result, nil
}

type output struct {
	path string
	data []byte
}

// generateOne renders every target before writing any of them. Type names
// are claimed on copies of scopes, returned as next only on success, so a
// skipped file does not shift the numbering of later ones.
func (d *Driver) generateOne(ctx context.Context, sc genScope, path string, targets []Target, scopes []*naming.Scope) ([]string, []*naming.Scope, error) {
	doc, err := d.loader.Load(ctx, schema.SourceFromFile(path))
	if err != nil {
		return nil, nil, fmt.Errorf("batch: load %s: %w", path, err)
	}
	set, err := d.parser.Parse(ctx, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}

	name := OutputName(path)
	next := make([]*naming.Scope, len(scopes))
	outputs := make([]output, 0, len(targets))
	for idx, target := range targets {
		next[idx] = naming.NewScope(scopes[idx].Names()...)
		data, err := target.Generator.Generate(ctx, set, codegen.Settings{
			Namespace:  sc.namespace,
			Types:      d.types,
			Properties: d.properties,
			Enums:      d.enums,
			Scope:      next[idx],
		})
		if err != nil {
			return nil, nil, fmt.Errorf("batch: generate %s for %s: %w", target.Generator.Name(), path, err)
		}
		outputs = append(outputs, output{
			path: filepath.Join(target.Dir, sc.rel, name+target.Generator.Extension()),
			data: data,
		})
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if err := afero.WriteFile(d.fs, out.path, out.data, 0o644); err != nil {
			return written, nil, fmt.Errorf("batch: write %s: %w", out.path, err)
		}
		level.Info(d.logger).Log("msg", "wrote", "file", out.path, "size", humanize.Bytes(uint64(len(out.data))))
		written = append(written, out.path)
	}
	return written, next, nil
}

// handleFailure applies the on-error policy and returns a non-nil error when
// the run must stop.
func (d *Driver) handleFailure(ctx context.Context, path string, cause error) error {
	switch d.onError {
	case OnErrorSkip:
		return nil
	case OnErrorPrompt:
		if d.prompter == nil {
			break
		}
		message := fmt.Sprintf("Generating %s failed. Skip it and continue with the remaining schemas?", filepath.Base(path))
		ok, err := d.prompter.Confirm(ctx, message)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return fmt.Errorf("%w: %w", ErrAborted, cause)
			}
			return fmt.Errorf("batch: prompt: %w", err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrAborted, cause)
}

func (d *Driver) subfolders(root string) ([]string, error) {
	entries, err := afero.ReadDir(d.fs, root)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// schemaFiles lists the *.json files directly inside the scope folder in
// lexicographic order, minus excluded ones.
func (d *Driver) schemaFiles(sc genScope) ([]string, error) {
	entries, err := afero.ReadDir(d.fs, sc.dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", sc.dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		rel := entry.Name()
		if sc.rel != "" {
			rel = sc.rel + "/" + rel
		}
		if d.excluded(rel) {
			level.Debug(d.logger).Log("msg", "excluded", "file", rel)
			continue
		}
		files = append(files, filepath.Join(sc.dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (d *Driver) excluded(rel string) bool {
	for _, pattern := range d.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// namespaceSegment turns a folder name into a legal namespace segment:
// "v1-beta" becomes "v1_beta". The output folder keeps the original name.
func namespaceSegment(folder string) string {
	segment, err := naming.Sanitize(folder)
	if err != nil {
		return folder
	}
	return segment
}

// OutputName is the schema file name without its extension and without any
// ".schema" fragment: "person.schema.json" becomes "person".
func OutputName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, ".schema", "")
}
