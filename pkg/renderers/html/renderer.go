package html

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/render"
	rendertemplate "github.com/goliatone/go-formfill/pkg/render/template"
	gotemplate "github.com/goliatone/go-formfill/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/verification"
)

// Page titles used when the page model leaves Title empty.
const (
	ListTitle    = "Available Forms"
	SuccessTitle = "Success!"
)

// RefreshLabel names the button that re-evaluates visibility without
// JavaScript.
const RefreshLabel = "Update questions"

type Option func(*config)

type config struct {
	templateFS fs.FS
	policy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithPolicy replaces the sanitizer applied to author-provided markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer produces full HTML documents for every page kind.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.policy == nil {
		cfg.policy = defaultPolicy()
	}

	policy := cfg.policy
	engine, err := gotemplate.New(
		gotemplate.WithFS(cfg.templateFS),
		gotemplate.WithGlobals(map[string]any{
			"SelectPlaceholder": formview.SelectPlaceholder,
			"ActionField":       formview.ActionField,
			"ActionSubmit":      formview.ActionSubmit,
			"ActionRefresh":     formview.ActionRefresh,
			"RefreshLabel":      RefreshLabel,
			"ReturnLabel":       verification.ReturnLabel,
			"RevokeLabel":       verification.RevokeLabel,
		}),
		gotemplate.WithFunc("sanitize", func(raw string) string {
			return sanitize(policy, raw)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
	}

	return &Renderer{templates: engine}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the template matching page.Kind.
func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data any
	switch page.Kind {
	case render.KindList:
		data = r.listData(page, options)
	case render.KindForm:
		if page.Form == nil {
			return nil, fmt.Errorf("html renderer: form page without form")
		}
		data = r.formData(page, options)
	case render.KindSuccess:
		if page.Success == nil {
			return nil, fmt.Errorf("html renderer: success page without outcome")
		}
		data = r.successData(page, options)
	case render.KindVerify:
		if page.Landing == nil {
			return nil, fmt.Errorf("html renderer: verify page without landing")
		}
		data = r.verifyData(page, options)
	case render.KindError:
		data = r.errorData(page, options)
	default:
		return nil, fmt.Errorf("html renderer: unknown page kind %q", page.Kind)
	}

	result, err := r.templates.RenderTemplate(string(page.Kind), data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", page.Kind, err)
	}
	return []byte(result), nil
}

// Template data is passed through JSON, so fields are read in templates by
// their Go names.
type layoutData struct {
	Title      string
	Stylesheet string
	CSSVars    map[string]string
	HomeURL    string
	Refresh    string
}

type listItem struct {
	Title       string
	Description string
	Author      string
	URL         string
}

type listData struct {
	layoutData
	Forms []listItem
}

type formData struct {
	layoutData
	Description string
	Action      string
	Email       *formview.EmailField
	Sections    []formview.SectionView
	Hidden      []render.HiddenField
	Errors      []string
	Locked      bool
	SubmitLabel string
}

type successData struct {
	layoutData
	Message     string
	RedirectURL string
}

type verifyData struct {
	layoutData
	LogoURL      string
	Welcome      string
	Badges       []verification.Badge
	Instructions string
	Description  string
	RevokeAction string
	RevokeFields []render.HiddenField
}

type errorData struct {
	layoutData
	Message   string
	ReturnURL string
}

func (r *Renderer) layout(title string, th schema.Theme, name string, options render.RenderOptions) layoutData {
	cfg := th.RendererConfig(name, options.AssetPrefix)
	return layoutData{
		Title:      title,
		Stylesheet: cfg.AssetURL(StylesheetName),
		CSSVars:    cfg.CSSVars,
		HomeURL:    link(options.BasePath),
	}
}

func (r *Renderer) listData(page render.Page, options render.RenderOptions) listData {
	data := listData{layoutData: r.layout(orDefault(page.Title, ListTitle), schema.Theme{}, "list", options)}
	for _, summary := range page.Forms {
		data.Forms = append(data.Forms, listItem{
			Title:       formview.FormTitle(summary.Metadata.Title),
			Description: summary.Metadata.Description,
			Author:      strings.TrimSpace(summary.Metadata.Author),
			URL:         link(options.BasePath, "form", summary.ID),
		})
	}
	return data
}

func (r *Renderer) formData(page render.Page, options render.RenderOptions) formData {
	view := page.Form
	data := formData{
		layoutData:  r.layout(orDefault(page.Title, view.Title), view.Theme, view.FormID, options),
		Description: view.Description,
		Action:      link(options.BasePath, "form", view.FormID),
		Email:       view.Email,
		Sections:    view.Sections,
		Hidden:      render.MergeHiddenFields(render.HiddenAnswers(view.Hidden), options.Hidden...),
		Errors:      render.MergeFormErrors(options.FormErrors, view.SubmitError),
		Locked:      view.Locked,
		SubmitLabel: orDefault(view.SubmitLabel, formview.SubmitLabel),
	}
	return data
}

func (r *Renderer) successData(page render.Page, options render.RenderOptions) successData {
	success := page.Success
	redirect := success.RedirectURL
	if redirect == "" {
		redirect = link(options.BasePath)
	}
	delay := success.Delay
	if delay <= 0 {
		delay = submission.DefaultRedirectDelay
	}
	data := successData{
		layoutData:  r.layout(orDefault(page.Title, SuccessTitle), schema.Theme{}, "success", options),
		Message:     orDefault(success.Message, submission.SuccessMessage),
		RedirectURL: redirect,
	}
	data.Refresh = fmt.Sprintf("%d;url=%s", int(delay.Seconds()+0.5), redirect)
	return data
}

func (r *Renderer) verifyData(page render.Page, options render.RenderOptions) verifyData {
	landing := page.Landing
	data := verifyData{
		layoutData: layoutData{
			Title:   orDefault(page.Title, landing.Title),
			HomeURL: link(options.BasePath),
		},
		LogoURL:      landing.LogoURL,
		Welcome:      landing.Welcome,
		Badges:       landing.Badges,
		Instructions: landing.Instructions,
		Description:  landing.Description,
		RevokeAction: link(options.BasePath, "verify", "revoke"),
	}
	if landing.Theme != nil {
		data.CSSVars = landing.Theme.CSSVars
		if landing.Theme.AssetURL != nil {
			data.Stylesheet = landing.Theme.AssetURL(StylesheetName)
		}
	} else {
		base := r.layout(data.Title, schema.Theme{}, "verify", options)
		data.CSSVars, data.Stylesheet = base.CSSVars, base.Stylesheet
	}
	for name, values := range landing.Params.Query() {
		for _, value := range values {
			data.RevokeFields = append(data.RevokeFields, render.Hidden(name, value))
		}
	}
	data.RevokeFields = render.SortedHiddenFields(data.RevokeFields)
	return data
}

func (r *Renderer) errorData(page render.Page, options render.RenderOptions) errorData {
	errPage := render.ErrorPage{}
	if page.Error != nil {
		errPage = *page.Error
	}
	title := orDefault(page.Title, errPage.Title)
	data := errorData{
		layoutData: r.layout(orDefault(title, verification.ErrorTitle), schema.Theme{}, "error", options),
		Message:    errPage.Message,
		ReturnURL:  orDefault(errPage.ReturnURL, link(options.BasePath)),
	}
	return data
}

// link joins escaped path segments onto base and always returns an absolute
// path.
func link(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	out = strings.TrimRight(out, "/")
	for _, segment := range segments {
		out += "/" + url.PathEscape(segment)
	}
	if len(segments) == 0 {
		out += "/"
	}
	return out
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
