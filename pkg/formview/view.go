package formview

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/visibility"
)

// ErrLocked rejects answer changes while a submission is in flight or after
// it succeeded.
var ErrLocked = errors.New("formview: answers are locked")

// View hosts one form being filled: the answers, the last validation errors,
// and the submission lifecycle. A View has a single owner.
type View struct {
	form      schema.Form
	store     *answers.Store
	machine   *submission.Machine
	submitter submission.Submitter
	eval      visibility.Evaluator
	vis       visibility.Set
	valOpts   []validation.Option
	errors    map[string]string
	message   string
}

// Option configures a View.
type Option func(*viewConfig)

type viewConfig struct {
	evaluator      visibility.Evaluator
	machineOpts    []submission.Option
	validationOpts []validation.Option
	store          *answers.Store
}

// WithEvaluator swaps the visibility evaluator for rendering and validation.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(cfg *viewConfig) {
		cfg.evaluator = eval
	}
}

// WithMachineOptions forwards options to the submission machine.
func WithMachineOptions(opts ...submission.Option) Option {
	return func(cfg *viewConfig) {
		cfg.machineOpts = append(cfg.machineOpts, opts...)
	}
}

// WithValidationOptions forwards options to every validation pass.
func WithValidationOptions(opts ...validation.Option) Option {
	return func(cfg *viewConfig) {
		cfg.validationOpts = append(cfg.validationOpts, opts...)
	}
}

// WithAnswers seeds the view with an existing store. The view takes
// ownership.
func WithAnswers(store *answers.Store) Option {
	return func(cfg *viewConfig) {
		cfg.store = store
	}
}

// New opens a view over form. Rules are compiled if the form was built in
// code.
func New(form schema.Form, submitter submission.Submitter, opts ...Option) *View {
	cfg := viewConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	form.Compile()

	store := cfg.store
	if store == nil {
		store = answers.New()
	}
	machineOpts := append([]submission.Option{}, cfg.machineOpts...)
	if cfg.evaluator != nil {
		machineOpts = append(machineOpts, submission.WithValidationOptions(validation.WithEvaluator(cfg.evaluator)))
	}
	if len(cfg.validationOpts) > 0 {
		machineOpts = append(machineOpts, submission.WithValidationOptions(cfg.validationOpts...))
	}

	return &View{
		form:      form,
		store:     store,
		machine:   submission.NewMachine(machineOpts...),
		submitter: submitter,
		eval:      cfg.evaluator,
		vis:       visibility.New(cfg.evaluator),
		valOpts:   cfg.validationOpts,
		errors:    map[string]string{},
	}
}

// Form returns the schema being filled.
func (v *View) Form() schema.Form {
	return v.form
}

// Answers exposes the current answers for reading.
func (v *View) Answers() answers.Reader {
	return v.store
}

// Payload returns the answers in submission shape.
func (v *View) Payload() map[string]any {
	return v.store.Payload()
}

// SetAnswer stores a scalar or multi answer.
func (v *View) SetAnswer(id string, value answers.Value) error {
	if err := v.edit(); err != nil {
		return err
	}
	v.store.Set(id, value)
	return nil
}

// ClearAnswer removes the answer for id so rules see it as unanswered.
func (v *View) ClearAnswer(id string) error {
	if err := v.edit(); err != nil {
		return err
	}
	v.store.Delete(id)
	return nil
}

// SetEmail stores the collected email address.
func (v *View) SetEmail(address string) error {
	return v.SetAnswer(validation.EmailKey, answers.Text(strings.TrimSpace(address)))
}

// Toggle flips one checkbox option.
func (v *View) Toggle(id, option string, on bool) error {
	if err := v.edit(); err != nil {
		return err
	}
	v.store.Toggle(id, option, on)
	return nil
}

func (v *View) edit() error {
	if err := v.machine.Edit(); err != nil {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}
	v.message = ""
	return nil
}

// EmailFeedback is the live message for the current email answer.
func (v *View) EmailFeedback() string {
	if !v.form.Metadata.RequireEmail {
		return ""
	}
	value, _ := v.store.Get(validation.EmailKey)
	return validation.EmailFeedback(v.form.Metadata, value.String())
}

// Validate runs a validation pass and records its errors without
// submitting.
func (v *View) Validate(opts ...validation.Option) validation.Result {
	all := append([]validation.Option{validation.WithEvaluator(v.eval)}, v.valOpts...)
	opts = append(all, opts...)
	result := validation.Validate(v.form, v.store, opts...)
	v.errors = maps.Clone(result.Errors)
	return result
}

// Submit validates and, when valid, submits the answers. Validation errors are
// kept on the view for rendering.
func (v *View) Submit(ctx context.Context) (submission.Outcome, error) {
	if v.submitter == nil {
		return submission.Outcome{}, errors.New("formview: no submitter configured")
	}
	outcome, err := v.machine.Submit(ctx, v.form, v.store, v.submitter)
	switch outcome.State {
	case submission.StateIdle:
		if outcome.Validation.Errors != nil {
			v.errors = maps.Clone(outcome.Validation.Errors)
		}
	case submission.StateSuccess, submission.StateFailed:
		v.errors = map[string]string{}
	}
	v.message = outcome.Message
	return outcome, err
}

// State returns the submission state.
func (v *View) State() submission.State {
	return v.machine.State()
}

// Errors returns a copy of the last validation errors.
func (v *View) Errors() map[string]string {
	return maps.Clone(v.errors)
}

// Message returns the last submission message (failure text or success).
func (v *View) Message() string {
	return v.message
}

// Visible reports whether question id is currently shown, taking its section
// into account.
func (v *View) Visible(id string) bool {
	visible := false
	v.vis.Walk(v.form, v.store, func(_ int, _ schema.Section, q schema.Question) {
		if q.ID == id {
			visible = true
		}
	})
	return visible
}
