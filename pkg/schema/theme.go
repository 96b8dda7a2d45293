package schema

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultFontFamily applies when a theme leaves FontFamily empty.
const DefaultFontFamily = "inherit"

// Theme is the per-form styling value object. Renderers receive it explicitly
// (through RendererConfig) instead of writing to shared document state.
type Theme struct {
	PrimaryColor    string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty" yaml:"secondaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	SectionColor    string `json:"sectionColor,omitempty" yaml:"sectionColor,omitempty"`
	QuestionColor   string `json:"questionColor,omitempty" yaml:"questionColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Logo            *Logo  `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Logo points at an image shown above verification pages.
type Logo struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// LogoURL returns the logo address or an empty string.
func (t Theme) LogoURL() string {
	if t.Logo == nil {
		return ""
	}
	return strings.TrimSpace(t.Logo.URL)
}

// Tokens returns the non-empty theme values keyed by token name.
func (t Theme) Tokens() map[string]string {
	tokens := map[string]string{
		"primary-color":    t.PrimaryColor,
		"secondary-color":  t.SecondaryColor,
		"background-color": t.BackgroundColor,
		"section-color":    t.SectionColor,
		"question-color":   t.QuestionColor,
		"font-family":      t.FontFamily,
	}
	for key, value := range tokens {
		if strings.TrimSpace(value) == "" {
			delete(tokens, key)
		}
	}
	return tokens
}

// CSSVars derives custom properties from the tokens. The font family falls
// back to DefaultFontFamily.
func (t Theme) CSSVars() map[string]string {
	vars := make(map[string]string, 6)
	for key, value := range t.Tokens() {
		vars["--"+key] = value
	}
	if _, ok := vars["--font-family"]; !ok {
		vars["--font-family"] = DefaultFontFamily
	}
	return vars
}

// RendererConfig converts the theme into the go-theme renderer contract so
// HTML and terminal renderers share one theming seam. assetPrefix resolves
// asset keys (for example the stylesheet) into URLs.
func (t Theme) RendererConfig(name, assetPrefix string) *theme.RendererConfig {
	prefix := strings.TrimRight(assetPrefix, "/")
	return &theme.RendererConfig{
		Theme:   name,
		Variant: "default",
		Tokens:  t.Tokens(),
		CSSVars: t.CSSVars(),
		AssetURL: func(key string) string {
			key = strings.TrimLeft(strings.TrimSpace(key), "/")
			if key == "" {
				return ""
			}
			return prefix + "/" + key
		},
	}
}
