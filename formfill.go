package formfill

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/render"
	"github.com/goliatone/go-formfill/pkg/renderers/html"
	"github.com/goliatone/go-formfill/pkg/renderers/tui"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
)

// Form aliases schema.Form for callers that only need the top-level package.
type Form = schema.Form

// RenderOptions describes per-request overrides such as the base path and
// extra hidden fields.
type RenderOptions = render.RenderOptions

// LoadForm reads one JSON or YAML form definition from disk.
func LoadForm(path string) (Form, error) {
	return schema.LoadFile(path)
}

// LoadForms reads every form definition under fsys into a catalog keyed by
// form id.
func LoadForms(fsys fs.FS) (*schema.Catalog, error) {
	return schema.LoadFS(fsys)
}

// NewView opens a fill session over form that submits through submitter.
func NewView(form Form, submitter submission.Submitter, options ...formview.Option) *formview.View {
	return formview.New(form, submitter, options...)
}

// NewMemoryService returns a typed backend client over an in-process
// backend serving catalog.
func NewMemoryService(catalog *schema.Catalog, options ...client.Option) (*client.Service, *client.MemoryInvoker) {
	memory := client.NewMemoryInvoker(catalog)
	return client.NewService(memory, options...), memory
}

// NewHTTPService returns a typed backend client that posts actions to
// baseURL.
func NewHTTPService(baseURL string, httpOptions []client.HTTPOption, options ...client.Option) (*client.Service, error) {
	invoker, err := client.NewHTTPInvoker(baseURL, httpOptions...)
	if err != nil {
		return nil, err
	}
	return client.NewService(invoker, options...), nil
}

// NewRegistry registers the built-in renderers: "html" and "tui".
func NewRegistry(tuiOptions ...tui.Option) (*render.Registry, error) {
	registry := render.NewRegistry()

	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("formfill: html renderer: %w", err)
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}

	tuiRenderer, err := tui.New(tuiOptions...)
	if err != nil {
		return nil, fmt.Errorf("formfill: tui renderer: %w", err)
	}
	if err := registry.Register(tuiRenderer); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderForm renders the current state of view with the named renderer. It
// is the simplest entry point for callers that just want a page.
func RenderForm(ctx context.Context, registry *render.Registry, rendererName string, view *formview.View, options RenderOptions) ([]byte, error) {
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, err
	}
	page := view.Page()
	return renderer.Render(ctx, render.Page{Kind: render.KindForm, Form: &page}, options)
}
