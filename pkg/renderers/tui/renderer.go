package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/render"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/verification"
)

// Renderer prints pages as plain text and drives interactive fill sessions
// through a PromptDriver.
type Renderer struct {
	driver        PromptDriver
	out           io.Writer
	outputFormat  OutputFormat
	confirmSubmit bool
	theme         Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		out:          os.Stdout,
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the content type of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints a non-interactive text version of page.
func (r *Renderer) Render(ctx context.Context, page render.Page, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	switch page.Kind {
	case render.KindList:
		writeList(&b, page)
	case render.KindForm:
		if page.Form == nil {
			return nil, errors.New("tui: form page without form")
		}
		writeForm(&b, *page.Form)
	case render.KindSuccess:
		message := submission.SuccessMessage
		if page.Success != nil && page.Success.Message != "" {
			message = page.Success.Message
		}
		fmt.Fprintf(&b, "%s\n%s\n", orDefault(page.Title, "Success!"), message)
	case render.KindVerify:
		if page.Landing == nil {
			return nil, errors.New("tui: verify page without landing")
		}
		writeLanding(&b, *page.Landing)
	case render.KindError:
		title, message := verification.ErrorTitle, ""
		if page.Error != nil {
			title = orDefault(page.Error.Title, title)
			message = page.Error.Message
		}
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, orDefault(page.Title, title))
		if message != "" {
			fmt.Fprintln(&b, message)
		}
	default:
		return nil, fmt.Errorf("tui: unknown page kind %q", page.Kind)
	}
	return b.Bytes(), nil
}

func writeList(b *bytes.Buffer, page render.Page) {
	fmt.Fprintln(b, orDefault(page.Title, "Available Forms"))
	if len(page.Forms) == 0 {
		fmt.Fprintln(b, "No forms are currently available")
		return
	}
	for _, summary := range page.Forms {
		fmt.Fprintf(b, "\n- %s [%s]\n", formview.FormTitle(summary.Metadata.Title), summary.ID)
		description := plainText(summary.Metadata.Description)
		if description == "" {
			description = "No description available"
		}
		fmt.Fprintf(b, "  %s\n", description)
		if summary.Metadata.Author != "" {
			fmt.Fprintf(b, "  Created by: %s\n", summary.Metadata.Author)
		}
	}
}

func writeForm(b *bytes.Buffer, page formview.Page) {
	fmt.Fprintln(b, page.Title)
	if description := plainText(page.Description); description != "" {
		fmt.Fprintln(b, description)
	}
	if page.Email != nil {
		fmt.Fprintf(b, "\n%s: %s\n", page.Email.Label, page.Email.Value)
	}
	for _, section := range page.Sections {
		fmt.Fprintf(b, "\n== %s ==\n", section.Title)
		for _, q := range section.Questions {
			answer := q.Value
			if len(q.Values) > 0 {
				answer = strings.Join(q.Values, ", ")
			}
			fmt.Fprintf(b, "%s: %s\n", questionLabel(q), answer)
			if q.Error != "" {
				fmt.Fprintf(b, "  ! %s\n", q.Error)
			}
		}
	}
	if page.SubmitError != "" {
		fmt.Fprintf(b, "\n%s\n", page.SubmitError)
	}
}

func writeLanding(b *bytes.Buffer, landing verification.Landing) {
	fmt.Fprintln(b, landing.Title)
	if welcome := plainText(landing.Welcome); welcome != "" {
		fmt.Fprintln(b, welcome)
	}
	for _, badge := range landing.Badges {
		fmt.Fprintf(b, "%s %s %s\n", badge.Icon, badge.Label, badge.Status)
	}
	if instructions := plainText(landing.Instructions); instructions != "" {
		fmt.Fprintf(b, "\n%s\n", instructions)
	}
	if description := plainText(landing.Description); description != "" {
		fmt.Fprintf(b, "\nAdditional Information\n%s\n", description)
	}
}

func questionLabel(q formview.QuestionView) string {
	if q.Required {
		return q.Label + " *"
	}
	return q.Label
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// plainText strips author markup for terminal output.
func plainText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
