package gotemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formfill/pkg/render/template"
)

const extension = ".tpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	globals   map[string]any
	funcs     map[string]any
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithGlobals exposes values to every template under their keys.
func WithGlobals(values map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithFunc exposes fn to templates as a callable, e.g. {{ sanitize(text) }}.
func WithFunc(name string, fn any) Option {
	return func(cfg *config) {
		if cfg.funcs == nil {
			cfg.funcs = map[string]any{}
		}
		cfg.funcs[strings.TrimSpace(name)] = fn
	}
}

// Engine renders named templates from a pongo2 template set. Parsed
// templates are cached by name.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine over the configured template files.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: templates fs is required")
	}

	globals := pongo2.Context{}
	if len(cfg.globals) > 0 {
		converted, err := toContext(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: globals: %w", err)
		}
		globals.Update(converted)
	}
	for name, fn := range cfg.funcs {
		if name == "" || fn == nil || reflect.ValueOf(fn).Kind() != reflect.Func {
			return nil, fmt.Errorf("gotemplate: func %q is not callable", name)
		}
		globals[name] = fn
	}

	set := pongo2.NewSet("formfill", pongo2.NewFSLoader(cfg.templates))
	set.Globals = globals
	registerFilters()

	return &Engine{set: set, templates: map[string]*pongo2.Template{}}, nil
}

// RenderTemplate executes the template called name (the .tpl extension is
// optional) with data.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, extension) {
		name += extension
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	return out, nil
}

func (e *Engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

// toContext passes data through JSON so templates see plain maps and slices.
// Untagged struct fields keep their Go names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("cssvars") {
			_ = pongo2.RegisterFilter("cssvars", filterCSSVars)
		}
	})
}

// filterCSSVars renders a map of custom properties as an inline style value
// with keys sorted. Values that could break out of the attribute are dropped.
func filterCSSVars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	vars, ok := in.Interface().(map[string]any)
	if !ok || len(vars) == 0 {
		return pongo2.AsValue(""), nil
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(fmt.Sprint(vars[key]))
		if value == "" || strings.ContainsAny(value, ";{}<>\"") {
			continue
		}
		parts = append(parts, key+": "+value)
	}
	return pongo2.AsValue(strings.Join(parts, "; ")), nil
}
