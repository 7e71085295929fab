package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// LoadSet reads the schema document at path through loader and parses it.
// Testing helpers fail the test on error to keep golden tests concise.
func LoadSet(t *testing.T, loader jsonschema.Loader, parser schema.Parser, path string) *schema.Set {
	t.Helper()

	set, err := LoadSetFromPath(Context(), loader, parser, path)
	if err != nil {
		t.Fatalf("load set: %v", err)
	}
	return set
}

// LoadSetFromPath is LoadSet without testing.T, for setup outside a test.
func LoadSetFromPath(ctx context.Context, loader jsonschema.Loader, parser schema.Parser, path string) (*schema.Set, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	if loader == nil || parser == nil {
		return nil, errors.New("testsupport: loader and parser are required")
	}
	doc, err := loader.Load(ctx, jsonschema.SourceFromFile(path))
	if err != nil {
		return nil, fmt.Errorf("testsupport: load document: %w", err)
	}
	set, err := parser.Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse document: %w", err)
	}
	return set, nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, or rewrites the
// golden when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	if diff := CompareGolden(MustReadGoldenString(t, path), string(got)); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
