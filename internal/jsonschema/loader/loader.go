// Package loader reads schema documents from the OS (or an afero)
// filesystem, an fs.FS, or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/spf13/afero"

	pkgjsonschema "github.com/goliatone/go-schemagen/pkg/jsonschema"
)

var (
	errHTTPDisabled = errors.New("http support disabled")
	errTooLarge     = errors.New("document too large")
)

// Loader implements pkgjsonschema.Loader. Each source kind has its own
// strategy; all of them honour the document size cap.
type Loader struct {
	files   afero.Fs
	fsys    fs.FS
	client  *http.Client
	timeout time.Duration
	limit   int64
}

var _ pkgjsonschema.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options. HTTP sources are rejected
// unless a client is supplied or the fallback client is enabled.
func New(options pkgjsonschema.LoaderOptions) pkgjsonschema.Loader {
	files := options.Files
	if files == nil {
		files = afero.NewOsFs()
	}
	return &Loader{
		files:   files,
		fsys:    options.FileSystem,
		client:  httpClient(options),
		timeout: options.RequestTimeout,
		limit:   options.MaxDocumentBytes,
	}
}

func httpClient(options pkgjsonschema.LoaderOptions) *http.Client {
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		return &clone
	case options.AllowHTTPFallback:
		return &http.Client{Timeout: options.RequestTimeout}
	default:
		return nil
	}
}

// Load reads src and wraps the payload in a Document. Errors name the
// source location.
func (l *Loader) Load(ctx context.Context, src pkgjsonschema.Source) (pkgjsonschema.Document, error) {
	if src == nil {
		return pkgjsonschema.Document{}, errors.New("jsonschema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgjsonschema.Document{}, err
	}

	data, err := l.read(ctx, src)
	if err != nil {
		return pkgjsonschema.Document{}, fmt.Errorf("jsonschema loader: %s: %w", src.Location(), err)
	}
	return pkgjsonschema.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src pkgjsonschema.Source) ([]byte, error) {
	location := src.Location()
	if location == "" {
		return nil, errors.New("location is required")
	}
	switch src.Kind() {
	case pkgjsonschema.SourceKindFile:
		return l.readFile(location)
	case pkgjsonschema.SourceKindFS:
		return l.readFS(location)
	case pkgjsonschema.SourceKindURL:
		if l.client == nil {
			return nil, errHTTPDisabled
		}
		return l.readHTTP(ctx, location)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind())
	}
}

// readLimited reads r in full, failing once more than limit bytes arrive.
// A zero limit means unlimited.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", errTooLarge, limit)
	}
	return data, nil
}
