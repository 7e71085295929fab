// Package openapi exposes the public contract for reading the component
// schemas of OpenAPI 3 documents. The kin-openapi backed implementation lives
// under internal/openapi so consumers never import it directly.
package openapi
