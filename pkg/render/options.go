package render

// RenderOptions carry per-request data that does not belong to the page
// model itself.
type RenderOptions struct {
	// BasePath prefixes every link and form action the renderer emits.
	BasePath string
	// AssetPrefix prefixes stylesheet and logo URLs.
	AssetPrefix string
	// Hidden adds inputs posted back with the form, after the page's own
	// hidden answers.
	Hidden []HiddenField
	// FormErrors are shown above the form, merged with any submit error.
	FormErrors []string
}
