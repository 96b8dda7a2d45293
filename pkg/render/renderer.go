package render

import (
	"context"
	"time"

	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/verification"
)

// Kind selects which screen a Page describes.
type Kind string

const (
	KindList    Kind = "list"
	KindForm    Kind = "form"
	KindSuccess Kind = "success"
	KindVerify  Kind = "verify"
	KindError   Kind = "error"
)

// Page is the renderer-neutral model of one screen. Only the block matching
// Kind is read.
type Page struct {
	Kind    Kind
	Title   string
	Forms   []schema.Summary
	Form    *formview.Page
	Success *SuccessPage
	Landing *verification.Landing
	Error   *ErrorPage
}

// SuccessPage confirms a submission and sends the participant back to the
// list after Delay.
type SuccessPage struct {
	Message     string
	RedirectURL string
	Delay       time.Duration
}

// ErrorPage reports a failure with a way back.
type ErrorPage struct {
	Title     string
	Message   string
	ReturnURL string
}

// Renderer converts a Page into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
