package template

// TemplateRenderer is the seam the HTML renderer uses to execute its page
// templates by name.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}
