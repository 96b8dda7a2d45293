// Package formview hosts a single form being filled. It owns the answer
// store, recomputes visibility for every page it builds, and routes submit
// attempts through the submission state machine.
package formview
