package formview

import (
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/validation"
)

// Pages post ActionField to say whether the participant submitted or only
// changed an answer that may reveal or hide questions.
const (
	ActionField   = "_action"
	ActionSubmit  = "submit"
	ActionRefresh = "refresh"
)

// PostedAction returns the posted action, defaulting to ActionSubmit.
func PostedAction(values url.Values) string {
	if values.Get(ActionField) == ActionRefresh {
		return ActionRefresh
	}
	return ActionSubmit
}

// Bind copies posted form values into the view. Keys are question ids;
// checkbox questions may repeat their key once per selected option and post
// one blank entry so an empty group still arrives. Keys that are not posted
// leave the answer unset, and a blank scalar clears it.
func (v *View) Bind(values url.Values) error {
	if v.form.Metadata.RequireEmail {
		if posted, ok := values[validation.EmailKey]; ok {
			if err := v.SetEmail(first(posted)); err != nil {
				return err
			}
		}
	}
	for _, section := range v.form.Sections {
		for _, q := range section.Questions {
			posted, ok := values[q.ID]
			if !ok {
				continue
			}
			value := valueFor(q, posted)
			if value.Kind() != answers.KindMulti && strings.TrimSpace(value.String()) == "" {
				if err := v.ClearAnswer(q.ID); err != nil {
					return err
				}
				continue
			}
			if err := v.SetAnswer(q.ID, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func valueFor(q schema.Question, posted []string) answers.Value {
	switch q.Type {
	case schema.QuestionCheckbox:
		selected := make([]string, 0, len(posted))
		for _, value := range posted {
			if value != "" && !slices.Contains(selected, value) {
				selected = append(selected, value)
			}
		}
		return answers.Multi(selected...)
	case schema.QuestionNumber:
		return answers.Numeric(first(posted))
	default:
		return answers.Text(first(posted))
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
