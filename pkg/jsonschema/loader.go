package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// Loader fetches schema documents from files, an fs.FS or HTTP.
// Implementations live under internal/jsonschema/loader.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// Files backs SourceKindFile locations. Nil means the OS filesystem.
	Files afero.Fs

	// FileSystem backs SourceKindFS locations.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour. Nil means
	// HTTP sources are disabled unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback enables a default HTTP client when none is supplied.
	AllowHTTPFallback bool

	// RequestTimeout caps each remote fetch.
	RequestTimeout time.Duration

	// MaxDocumentBytes caps the payload size of a single document. Zero
	// means unlimited.
	MaxDocumentBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFiles reads SourceKindFile locations through files.
func WithFiles(files afero.Fs) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Files = files
	}
}

// WithFileSystem injects an fs.FS for SourceKindFS locations.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and the given
// per-request timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxDocumentBytes caps the size of loaded documents.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
