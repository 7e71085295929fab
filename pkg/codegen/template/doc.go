// Package template defines the template rendering seam the language
// generators depend on. The pongo2 implementation lives in the gotemplate
// subpackage.
package template
