// Package html renders formfill pages as server-side HTML documents.
//
// Templates run on pongo2 through the gotemplate adapter and are embedded by
// default. Author-provided markup in descriptions and landing text is
// sanitized with bluemonday before it reaches a template; every other value
// is escaped. Forms work without JavaScript: a refresh button re-evaluates
// visibility, and a small inline script presses it when a controlling answer
// changes.
package html
