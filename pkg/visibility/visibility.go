package visibility

import (
	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
)

// Evaluator decides whether a showWhen rule currently holds for the given
// answers. Implementations must be pure and cheap; hosts call them on every
// render.
type Evaluator interface {
	Eval(rule *schema.Rule, values answers.Reader) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule *schema.Rule, values answers.Reader) bool

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule *schema.Rule, values answers.Reader) bool {
	return fn(rule, values)
}

// Default evaluates compiled conditions with IsVisible.
var Default Evaluator = EvaluatorFunc(IsVisible)

// IsVisible reports whether the target of rule is visible. A nil rule and a
// rule without a question reference or condition are always visible. A range
// with bad bounds never matches, so its target stays hidden.
func IsVisible(rule *schema.Rule, values answers.Reader) bool {
	cond, ok := rule.Condition()
	if !ok {
		return true
	}
	var (
		value   answers.Value
		present bool
	)
	if values != nil {
		value, present = values.Get(rule.QuestionID)
	}
	return cond.Match(value, present)
}

// Visitor receives every visible question together with its section index.
type Visitor func(sectionIndex int, section schema.Section, question schema.Question)

// Set applies an Evaluator to whole forms.
type Set struct {
	eval Evaluator
}

// New returns a Set backed by eval; nil selects Default.
func New(eval Evaluator) Set {
	if eval == nil {
		eval = Default
	}
	return Set{eval: eval}
}

// SectionVisible evaluates the section-level rule only.
func (s Set) SectionVisible(section schema.Section, values answers.Reader) bool {
	return s.evaluator().Eval(section.ShowWhen, values)
}

// QuestionVisible evaluates the question-level rule only. Callers gate it on
// SectionVisible.
func (s Set) QuestionVisible(question schema.Question, values answers.Reader) bool {
	return s.evaluator().Eval(question.ShowWhen, values)
}

// VisibleSections returns the indexes of sections whose rule holds, in
// schema order.
func (s Set) VisibleSections(form schema.Form, values answers.Reader) []int {
	var out []int
	for i, section := range form.Sections {
		if s.SectionVisible(section, values) {
			out = append(out, i)
		}
	}
	return out
}

// VisibleQuestions filters a section's questions by their own rules. It does
// not look at the section rule.
func (s Set) VisibleQuestions(section schema.Section, values answers.Reader) []schema.Question {
	var out []schema.Question
	for _, q := range section.Questions {
		if s.QuestionVisible(q, values) {
			out = append(out, q)
		}
	}
	return out
}

// Walk visits every visible question in schema order. Questions of a hidden
// section are never evaluated.
func (s Set) Walk(form schema.Form, values answers.Reader, fn Visitor) {
	if fn == nil {
		return
	}
	for i, section := range form.Sections {
		if !s.SectionVisible(section, values) {
			continue
		}
		for _, q := range section.Questions {
			if s.QuestionVisible(q, values) {
				fn(i, section, q)
			}
		}
	}
}

// HiddenQuestionIDs lists questions hidden by their section or by their own
// rule, in schema order.
func (s Set) HiddenQuestionIDs(form schema.Form, values answers.Reader) []string {
	var hidden []string
	for _, section := range form.Sections {
		sectionVisible := s.SectionVisible(section, values)
		for _, q := range section.Questions {
			if !sectionVisible || !s.QuestionVisible(q, values) {
				hidden = append(hidden, q.ID)
			}
		}
	}
	return hidden
}

func (s Set) evaluator() Evaluator {
	if s.eval == nil {
		return Default
	}
	return s.eval
}

// VisibleSections is Set.VisibleSections with the default evaluator.
func VisibleSections(form schema.Form, values answers.Reader) []int {
	return Set{}.VisibleSections(form, values)
}

// VisibleQuestions is Set.VisibleQuestions with the default evaluator.
func VisibleQuestions(section schema.Section, values answers.Reader) []schema.Question {
	return Set{}.VisibleQuestions(section, values)
}

// Walk is Set.Walk with the default evaluator.
func Walk(form schema.Form, values answers.Reader, fn Visitor) {
	Set{}.Walk(form, values, fn)
}

// HiddenQuestionIDs is Set.HiddenQuestionIDs with the default evaluator.
func HiddenQuestionIDs(form schema.Form, values answers.Reader) []string {
	return Set{}.HiddenQuestionIDs(form, values)
}
