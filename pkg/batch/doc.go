// Package batch drives code generation over a directory of JSON Schema
// files.
//
// The schema root and each of its immediate subfolders form independent
// generation scopes. Every scope gets its own namespace (the base namespace,
// suffixed with the subfolder name) and its own set of reserved type names per
// target language. Files are processed one at a time in lexicographic order,
// which keeps collision numbering deterministic across runs.
//
// A failure on one file is handled by the configured OnError policy: stop the
// run, skip the file, or ask the operator through a Prompter.
package batch
