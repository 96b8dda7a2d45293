package formview

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
)

// Display fallbacks and labels shared by the renderers.
const (
	UntitledForm      = "Untitled Form"
	EmailLabel        = "Email Address"
	SelectPlaceholder = "Select an option"
	SubmitLabel       = "Submit"
	SubmittingLabel   = "Submitting..."
	SubmitErrorPrefix = "Error submitting form: "
)

// SectionTitle returns title or the positional fallback "Section N" for the
// zero-based index.
func SectionTitle(title string, index int) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return "Section " + strconv.Itoa(index+1)
}

// FormTitle returns the title or UntitledForm.
func FormTitle(title string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return UntitledForm
}

// Page is the render model of a view: only visible sections and questions,
// each carrying its current value and error.
type Page struct {
	FormID      string
	Title       string
	Description string
	Theme       schema.Theme
	Email       *EmailField
	Sections    []SectionView
	Hidden      []HiddenValue
	State       submission.State
	Locked      bool
	SubmitLabel string
	SubmitError string
}

// EmailField is the email block shown when the form collects addresses.
type EmailField struct {
	Name        string
	Label       string
	Value       string
	Hint        string
	Placeholder string
	Feedback    string
	Error       string
}

// SectionView is one visible section.
type SectionView struct {
	Index       int
	Title       string
	Description string
	Questions   []QuestionView
}

// QuestionView is one visible question.
type QuestionView struct {
	ID          string
	Type        schema.QuestionType
	Label       string
	Description string
	Required    bool
	Options     []OptionView
	Value       string
	Values      []string
	Error       string
	// Controls marks questions other rules depend on.
	Controls bool
}

// OptionView is one choice with its current selection flag.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// HiddenValue is an answer to a question that is currently hidden. Hosts that
// round-trip answers through a page carry these along so hiding a question
// never drops its answer.
type HiddenValue struct {
	Name  string
	Value string
}

// Page builds the render model for the current answers and errors.
func (v *View) Page() Page {
	meta := v.form.Metadata
	state := v.State()
	page := Page{
		FormID:      v.form.ID,
		Title:       FormTitle(meta.Title),
		Description: meta.Description,
		Theme:       meta.Theme,
		Sections:    v.Sections(),
		State:       state,
		Locked:      state == submission.StateSubmitting || state == submission.StateSuccess,
		SubmitLabel: SubmitLabel,
	}
	if state == submission.StateSubmitting {
		page.SubmitLabel = SubmittingLabel
	}
	if state == submission.StateFailed && v.message != "" {
		page.SubmitError = SubmitErrorPrefix + v.message
	}
	if meta.RequireEmail {
		value, _ := v.store.Get(validation.EmailKey)
		page.Email = &EmailField{
			Name:        validation.EmailKey,
			Label:       EmailLabel,
			Value:       value.String(),
			Hint:        validation.EmailHint(meta),
			Placeholder: validation.EmailPlaceholder(meta),
			Feedback:    validation.EmailFeedback(meta, value.String()),
			Error:       v.errors[validation.EmailKey],
		}
	}

	shown := make(map[string]bool)
	for _, section := range page.Sections {
		for _, q := range section.Questions {
			shown[q.ID] = true
		}
	}
	for _, id := range v.form.QuestionIDs() {
		if shown[id] {
			continue
		}
		value, ok := v.store.Get(id)
		if !ok {
			continue
		}
		if value.Kind() == answers.KindMulti {
			for _, selected := range value.Values() {
				page.Hidden = append(page.Hidden, HiddenValue{Name: id, Value: selected})
			}
			continue
		}
		page.Hidden = append(page.Hidden, HiddenValue{Name: id, Value: value.String()})
	}
	return page
}

// Sections returns the visible sections with their visible questions.
func (v *View) Sections() []SectionView {
	controllers := v.form.Controllers()
	var out []SectionView
	for _, index := range v.vis.VisibleSections(v.form, v.store) {
		section := v.form.Sections[index]
		view := SectionView{
			Index:       index,
			Title:       SectionTitle(section.Title, index),
			Description: section.Description,
		}
		for _, q := range v.vis.VisibleQuestions(section, v.store) {
			qv := v.question(q)
			qv.Controls = controllers[q.ID]
			view.Questions = append(view.Questions, qv)
		}
		out = append(out, view)
	}
	return out
}

func (v *View) question(q schema.Question) QuestionView {
	value, _ := v.store.Get(q.ID)
	qv := QuestionView{
		ID:          q.ID,
		Type:        q.Type,
		Label:       q.Question,
		Description: q.Description,
		Required:    q.Required,
		Error:       v.errors[q.ID],
	}
	if value.Kind() == answers.KindMulti {
		qv.Values = value.Values()
	} else {
		qv.Value = value.String()
	}
	for _, opt := range q.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		qv.Options = append(qv.Options, OptionView{
			Value:    opt.Value,
			Label:    label,
			Selected: value.Contains(opt.Value),
		})
	}
	return qv
}
