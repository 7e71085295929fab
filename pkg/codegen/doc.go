// Package codegen turns parsed schema sets into source files. Build lowers a
// schema.Set into a language-neutral File whose names already went through
// the naming policies; language generators under pkg/codegen/... render that
// model through templates.
package codegen
