// Package submission implements the idle/submitting/success/failed lifecycle
// of a form view. Validation gates every attempt; the backend is only reached
// with a complete, valid answer set.
package submission
