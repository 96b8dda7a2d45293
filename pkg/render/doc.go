// Package render defines the screen model shared by every output format and
// the registry hosts use to pick a renderer by name.
package render
