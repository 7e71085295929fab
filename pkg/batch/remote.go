package batch

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// remoteFallbackName is used when the URL path does not end in a .json file.
const remoteFallbackName = "target.json"

// fetchRemote downloads rawURL into a fresh temporary directory and returns
// it with a cleanup func that removes it.
func (d *Driver) fetchRemote(ctx context.Context, rawURL string) (string, func(), error) {
	src, err := schema.ParseURLSource(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}

	fetchCtx := ctx
	if d.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, d.fetchTimeout)
		defer cancel()
	}

	level.Info(d.logger).Log("msg", "fetching remote schema", "url", src.Location(), "timeout", d.fetchTimeout)
	doc, err := d.loader.Load(fetchCtx, src)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrRemoteFetch, src.Location(), err)
	}

	dir, err := afero.TempDir(d.fs, "", "schemagen-")
	if err != nil {
		return "", nil, fmt.Errorf("batch: create temp dir: %w", err)
	}
	cleanup := func() {
		if err := d.fs.RemoveAll(dir); err != nil {
			level.Warn(d.logger).Log("msg", "remove temp dir", "dir", dir, "err", err)
		}
	}

	target := filepath.Join(dir, remoteFileName(src.Location()))
	if err := afero.WriteFile(d.fs, target, doc.Raw(), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("batch: write %s: %w", target, err)
	}
	return dir, cleanup, nil
}

// remoteFileName keeps the URL's file name when it is a .json file, so the
// output is named after it.
func remoteFileName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return remoteFallbackName
	}
	name := path.Base(parsed.Path)
	if !strings.EqualFold(path.Ext(name), ".json") || strings.HasPrefix(name, ".") {
		return remoteFallbackName
	}
	return name
}
