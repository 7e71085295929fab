package jsonschema

import "github.com/goliatone/go-schemagen/pkg/schema"

// Source identifies where a JSON Schema document originated. It aliases the
// canonical schema source so loaders and parsers share one abstraction.
type Source = schema.Source

// SourceKind enumerates the loader modalities.
type SourceKind = schema.SourceKind

const (
	SourceKindFile = schema.SourceKindFile
	SourceKindFS   = schema.SourceKindFS
	SourceKindURL  = schema.SourceKindURL
)

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return schema.SourceFromFile(path)
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return schema.SourceFromFS(name)
}

// SourceFromURL returns a Source for a URL, panicking when it is invalid.
func SourceFromURL(raw string) Source {
	return schema.SourceFromURL(raw)
}
