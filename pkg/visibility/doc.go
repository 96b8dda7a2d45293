// Package visibility decides which sections and questions of a form are
// currently shown. Section rules gate their questions: a question inside a
// hidden section is never evaluated on its own.
package visibility
