package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Decode parses a document into a Form and compiles its rules. Forms without
// an id inherit the document's base name.
func Decode(doc Document) (Form, error) {
	var form Form
	switch doc.Format() {
	case FormatYAML:
		if err := yaml.Unmarshal(doc.raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode %s: %w", doc.Location(), err)
		}
	default:
		if err := json.Unmarshal(doc.raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode %s: %w", doc.Location(), err)
		}
	}
	if strings.TrimSpace(form.ID) == "" {
		form.ID = idFromLocation(doc.Location())
	}
	form.Compile()
	return form, nil
}

// DecodeJSON is Decode for an in-memory JSON payload.
func DecodeJSON(raw []byte) (Form, error) {
	doc, err := NewDocument(SourceFromFS("form.json"), raw)
	if err != nil {
		return Form{}, err
	}
	form, err := Decode(doc)
	if err != nil {
		return Form{}, err
	}
	if form.ID == "form" {
		form.ID = ""
	}
	return form, nil
}

// LoadFile reads and decodes a form from disk.
func LoadFile(filePath string) (Form, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Form{}, fmt.Errorf("schema: read %s: %w", filePath, err)
	}
	doc, err := NewDocument(SourceFromFile(filePath), data)
	if err != nil {
		return Form{}, err
	}
	return Decode(doc)
}

// LoadURL fetches and decodes a form over HTTP.
func LoadURL(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration) (Form, error) {
	src, err := ParseURLSource(rawURL)
	if err != nil {
		return Form{}, err
	}
	data, err := loadHTTP(ctx, client, rawURL, timeout)
	if err != nil {
		return Form{}, fmt.Errorf("schema: fetch %s: %w", rawURL, err)
	}
	doc, err := NewDocument(src, data)
	if err != nil {
		return Form{}, err
	}
	return Decode(doc)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Catalog holds the forms loaded from a directory, keyed by id.
type Catalog struct {
	forms map[string]Form
}

// NewCatalog builds a catalog from already decoded forms. Duplicate ids are an
// error.
func NewCatalog(forms ...Form) (*Catalog, error) {
	c := &Catalog{forms: make(map[string]Form, len(forms))}
	for _, form := range forms {
		if err := c.Add(form); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers a form. Its rules are compiled on the way in.
func (c *Catalog) Add(form Form) error {
	id := strings.TrimSpace(form.ID)
	if id == "" {
		return errors.New("schema: form id is required")
	}
	if _, exists := c.forms[id]; exists {
		return fmt.Errorf("schema: duplicate form %q", id)
	}
	form.Compile()
	c.forms[id] = form
	return nil
}

// Get returns the form with the given id.
func (c *Catalog) Get(id string) (Form, bool) {
	if c == nil {
		return Form{}, false
	}
	form, ok := c.forms[id]
	return form, ok
}

// List returns listing summaries sorted by title, then id.
func (c *Catalog) List() []Summary {
	if c == nil || len(c.forms) == 0 {
		return nil
	}
	out := make([]Summary, 0, len(c.forms))
	for _, form := range c.forms {
		out = append(out, form.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Metadata.Title != out[j].Metadata.Title {
			return out[i].Metadata.Title < out[j].Metadata.Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of forms.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.forms)
}

// LoadFS walks fsys and decodes every JSON/YAML file into the catalog. When
// fsys is nil the catalog is empty.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{forms: make(map[string]Form)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isFormFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", p, err)
		}
		doc, err := NewDocument(SourceFromFS(p), data)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", p, err)
		}
		form, err := Decode(doc)
		if err != nil {
			return err
		}
		if err := catalog.Add(form); err != nil {
			return fmt.Errorf("%w (file %s)", err, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func isFormFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func idFromLocation(location string) string {
	base := path.Base(strings.ReplaceAll(location, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
