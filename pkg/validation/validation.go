package validation

import (
	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/visibility"
)

const (
	// RequiredMessage is recorded for every visible required question left
	// empty.
	RequiredMessage = "This field is required"
	// OptionMessage is recorded for values outside the declared options when
	// membership checking is enabled.
	OptionMessage = "Please choose one of the available options"
)

// Option customises a validation pass.
type Option func(*config)

type config struct {
	evaluator        visibility.Evaluator
	optionMembership bool
}

// WithEvaluator swaps the visibility evaluator used to gate required checks.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(cfg *config) {
		if eval != nil {
			cfg.evaluator = eval
		}
	}
}

// WithOptionMembership reports select/radio values and checkbox entries that
// are not among the question's declared options. Off by default.
func WithOptionMembership() Option {
	return func(cfg *config) {
		cfg.optionMembership = true
	}
}

// FieldError pairs a question id with its message.
type FieldError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Result is the outcome of one full validation pass.
type Result struct {
	Errors map[string]string `json:"errors"`
	Valid  bool              `json:"valid"`

	order []string
}

// Messages returns the errors in display order: the email entry first, then
// questions in schema order.
func (r Result) Messages() []FieldError {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(r.Errors))
	for _, id := range r.order {
		out = append(out, FieldError{ID: id, Message: r.Errors[id]})
	}
	return out
}

// Message returns the error recorded for id.
func (r Result) Message(id string) string {
	return r.Errors[id]
}

func (r *Result) add(id, message string) {
	if _, exists := r.Errors[id]; !exists {
		r.order = append(r.order, id)
	}
	r.Errors[id] = message
	r.Valid = false
}

// Validate walks the visible part of form and reports every problem in one
// pass. Questions hidden by their section or by their own rule are skipped
// even when required.
func Validate(form schema.Form, values answers.Reader, opts ...Option) Result {
	cfg := config{evaluator: visibility.Default}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	result := Result{Errors: make(map[string]string), Valid: true}

	if form.Metadata.RequireEmail {
		address := textAnswer(values, EmailKey)
		switch {
		case address == "":
			result.add(EmailKey, RequiredMessage)
		case CheckEmail(form.Metadata, address) != nil:
			result.add(EmailKey, EmailFeedback(form.Metadata, address))
		}
	}

	visibility.New(cfg.evaluator).Walk(form, values, func(_ int, _ schema.Section, q schema.Question) {
		value, present := lookup(values, q.ID)
		if q.Required && (!present || value.IsEmpty()) {
			result.add(q.ID, RequiredMessage)
			return
		}
		if cfg.optionMembership && present && !outsideOptionsAllowed(q) && !withinOptions(q, value) {
			result.add(q.ID, OptionMessage)
		}
	})
	return result
}

// IsEmpty applies the required-field emptiness rule to one answer.
func IsEmpty(values answers.Reader, id string) bool {
	value, present := lookup(values, id)
	return !present || value.IsEmpty()
}

func lookup(values answers.Reader, id string) (answers.Value, bool) {
	if values == nil {
		return answers.Value{}, false
	}
	return values.Get(id)
}

func textAnswer(values answers.Reader, id string) string {
	value, ok := lookup(values, id)
	if !ok {
		return ""
	}
	return value.String()
}

func outsideOptionsAllowed(q schema.Question) bool {
	return !q.Type.HasOptions() || len(q.Options) == 0
}

func withinOptions(q schema.Question, value answers.Value) bool {
	if value.IsEmpty() {
		return true
	}
	if value.Kind() != answers.KindMulti {
		return q.HasOption(value.String())
	}
	for _, selected := range value.Values() {
		if !q.HasOption(selected) {
			return false
		}
	}
	return true
}
