// Package naming turns raw name hints taken from schema metadata (titles,
// document paths, property keys, enum values) into legal, collision-free
// identifiers for generated source code.
//
// The pipeline is the same for every kind of name: a policy derives a hint,
// a Resolver makes it unique within a Scope, Sanitize makes it a legal
// identifier and a Casing rule applies the target language convention.
// Scopes are explicit values owned by the caller; nothing here keeps
// process-wide state.
package naming
