package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := Config{
		Addr:          ":8080",
		BasePath:      "/isa-form",
		ServiceID:     "form_script",
		FormsDir:      "forms",
		Timeout:       15 * time.Second,
		RedirectDelay: 3 * time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.UsesMemoryBackend() {
		t.Fatalf("expected memory backend by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{
		"FORMFILL_BASE_PATH":     "forms/",
		"FORMFILL_BACKEND_URL":   " https://script.example.com/exec ",
		"FORMFILL_TIMEOUT":       "2s",
		"FORMFILL_PUBLIC_ORIGIN": "https://forms.example.com/",
		"FORMFILL_LOG_FORMAT":    "json",
		"FORMFILL_LOG_LEVEL":     "debug",
		"FORMFILL_OPTION_CHECK":  "true",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.BasePath != "/forms" || cfg.BackendURL != "https://script.example.com/exec" || cfg.PublicOrigin != "https://forms.example.com" {
		t.Fatalf("unexpected normalisation %+v", cfg)
	}
	if cfg.Timeout != 2*time.Second || !cfg.OptionCheck || cfg.UsesMemoryBackend() {
		t.Fatalf("unexpected values %+v", cfg)
	}

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Debug("hello", "form_id", "meetup")
	if !strings.Contains(buf.String(), `"form_id":"meetup"`) {
		t.Fatalf("expected JSON debug output, got %q", buf.String())
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()

	for name, environ := range map[string]map[string]string{
		"timeout":  {"FORMFILL_TIMEOUT": "0s"},
		"duration": {"FORMFILL_TIMEOUT": "soon"},
		"level":    {"FORMFILL_LOG_LEVEL": "loud"},
		"format":   {"FORMFILL_LOG_FORMAT": "xml"},
		"bool":     {"FORMFILL_OPTION_CHECK": "maybe"},
	} {
		if _, err := LoadFrom(environ); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]string{"": "", "/": "", "isa-form": "/isa-form", "/a/b/": "/a/b"} {
		if got := NormalizeBasePath(raw); got != want {
			t.Fatalf("NormalizeBasePath(%q) = %q, want %q", raw, got, want)
		}
	}
}
