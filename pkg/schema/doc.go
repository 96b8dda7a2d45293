// Package schema defines the form definition (metadata, ordered sections,
// ordered questions, showWhen rules, theme) together with JSON/YAML loaders
// and an advisory linter. Conditions inside showWhen rules are parsed once,
// when the document is decoded, so evaluation never re-reads the raw string.
package schema
