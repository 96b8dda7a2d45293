package testsupport

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
)

//go:embed testdata/forms/*
var formsFS embed.FS

// FormsFS exposes the shared form fixtures rooted at the forms directory.
func FormsFS() fs.FS {
	sub, err := fs.Sub(formsFS, "testdata/forms")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadForm decodes a fixture by file name (for example "meetup.json").
// Testing helpers fail the test on error to keep call sites concise.
func LoadForm(t *testing.T, name string) schema.Form {
	t.Helper()

	form, err := LoadFormFromFS(name)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadFormFromFS returns a fixture form without requiring testing.T.
func LoadFormFromFS(name string) (schema.Form, error) {
	if name == "" {
		return schema.Form{}, errors.New("testsupport: form name is required")
	}
	data, err := fs.ReadFile(FormsFS(), name)
	if err != nil {
		return schema.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFS(name), data)
	if err != nil {
		return schema.Form{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return schema.Decode(doc)
}

// MeetupForm is the multi-section fixture used across packages.
func MeetupForm(t *testing.T) schema.Form {
	t.Helper()
	return LoadForm(t, "meetup.json")
}

// MustCatalog loads every fixture into a catalog.
func MustCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	catalog, err := schema.LoadFS(FormsFS())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

// Answers builds a store from a compact literal: string values become text
// answers and []string values become checkbox selections.
func Answers(t *testing.T, values map[string]any) *answers.Store {
	t.Helper()

	store, err := answers.FromPayload(values)
	if err != nil {
		t.Fatalf("build answers: %v", err)
	}
	return store
}
