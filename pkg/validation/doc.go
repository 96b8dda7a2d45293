// Package validation produces the complete set of field errors for the
// visible part of a form, plus the email checks used for live feedback.
package validation
