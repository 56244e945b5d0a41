// Package template defines the engine contract renderers draw pages through.
// The gotemplate subpackage implements it with pongo2.
package template
