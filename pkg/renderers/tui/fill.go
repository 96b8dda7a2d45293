package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
)

const (
	// NumberMessage is shown when a number question receives something else.
	NumberMessage = "Please enter a number"
	// RetryMessage offers another attempt after the backend refused a
	// submission.
	RetryMessage = "Edit your answers and try again?"
)

// session tracks what has been asked during one Fill.
type session struct {
	r         *Renderer
	view      *formview.View
	asked     map[string]bool
	announced map[int]bool
}

// Fill prompts every visible question in schema order, re-evaluating
// visibility after each answer, then submits. Questions that fail validation
// are asked again. A remote failure offers to revisit the answers and retry.
func (r *Renderer) Fill(ctx context.Context, view *formview.View) (submission.Outcome, error) {
	if ctx == nil {
		return submission.Outcome{}, errors.New("tui: context is required")
	}
	if view == nil {
		return submission.Outcome{}, errors.New("tui: view is required")
	}
	s := &session{r: r, view: view, asked: map[string]bool{}, announced: map[int]bool{}}

	page := view.Page()
	r.info(ctx, page.Title)
	if description := plainText(page.Description); description != "" {
		r.info(ctx, description)
	}
	if page.Email != nil {
		if err := s.askEmail(ctx, *page.Email); err != nil {
			return submission.Outcome{}, err
		}
	}
	if err := s.walk(ctx); err != nil {
		return submission.Outcome{}, err
	}

	for {
		if r.confirmSubmit {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit your answers?", Default: true})
			if err != nil {
				return submission.Outcome{}, err
			}
			if !ok {
				return submission.Outcome{State: view.State()}, ErrDeclined
			}
		}

		outcome, err := view.Submit(ctx)
		switch outcome.State {
		case submission.StateSuccess:
			r.info(ctx, outcome.Message)
			return outcome, err
		case submission.StateFailed:
			r.fail(ctx, formview.SubmitErrorPrefix+outcome.Message)
			retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: RetryMessage, Default: true})
			if cerr != nil {
				return outcome, errors.Join(err, cerr)
			}
			if !retry {
				return outcome, err
			}
			if err := s.review(ctx); err != nil {
				return outcome, err
			}
			continue
		}
		if err != nil {
			return outcome, err
		}
		if err := s.fix(ctx, outcome.Validation); err != nil {
			return outcome, err
		}
	}
}

// walk asks the first visible question not asked yet until none is left.
// Scanning from the top each time picks up questions revealed by an answer.
func (s *session) walk(ctx context.Context) error {
	for {
		section, q, ok := s.next()
		if !ok {
			return nil
		}
		if !s.announced[section.Index] {
			s.announced[section.Index] = true
			s.r.info(ctx, "\n"+s.r.theme.PromptPrefix+section.Title)
			if description := plainText(section.Description); description != "" {
				s.r.info(ctx, description)
			}
		}
		s.asked[q.ID] = true
		if err := s.ask(ctx, q); err != nil {
			return err
		}
	}
}

func (s *session) next() (formview.SectionView, formview.QuestionView, bool) {
	for _, section := range s.view.Sections() {
		for _, q := range section.Questions {
			if !s.asked[q.ID] {
				return section, q, true
			}
		}
	}
	return formview.SectionView{}, formview.QuestionView{}, false
}

// review asks every visible question again with the current answers as
// defaults.
func (s *session) review(ctx context.Context) error {
	if page := s.view.Page(); page.Email != nil {
		if err := s.askEmail(ctx, *page.Email); err != nil {
			return err
		}
	}
	s.asked = map[string]bool{}
	return s.walk(ctx)
}

// fix reports each validation error and asks the affected question again,
// then continues with anything the new answers revealed.
func (s *session) fix(ctx context.Context, result validation.Result) error {
	for _, fe := range result.Messages() {
		if fe.ID == validation.EmailKey {
			page := s.view.Page()
			if page.Email == nil {
				continue
			}
			s.r.fail(ctx, page.Email.Label+": "+fe.Message)
			if err := s.askEmail(ctx, *page.Email); err != nil {
				return err
			}
			continue
		}
		q, ok := s.visibleQuestion(fe.ID)
		if !ok {
			continue
		}
		s.r.fail(ctx, q.Label+": "+fe.Message)
		if err := s.ask(ctx, q); err != nil {
			return err
		}
	}
	return s.walk(ctx)
}

func (s *session) visibleQuestion(id string) (formview.QuestionView, bool) {
	for _, section := range s.view.Sections() {
		for _, q := range section.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return formview.QuestionView{}, false
}

func (s *session) askEmail(ctx context.Context, field formview.EmailField) error {
	meta := s.view.Form().Metadata
	address, err := s.r.driver.Input(ctx, InputConfig{
		Message: field.Label,
		Default: field.Value,
		Help:    orDefault(field.Hint, field.Placeholder),
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return errors.New(validation.RequiredMessage)
			}
			if validation.CheckEmail(meta, strings.TrimSpace(raw)) != nil {
				return errors.New(validation.EmailFeedback(meta, strings.TrimSpace(raw)))
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	return s.view.SetEmail(address)
}

func (s *session) ask(ctx context.Context, q formview.QuestionView) error {
	var (
		value answers.Value
		err   error
	)
	switch q.Type {
	case schema.QuestionSelect, schema.QuestionRadio:
		value, err = s.askChoice(ctx, q)
	case schema.QuestionCheckbox:
		value, err = s.askMulti(ctx, q)
	case schema.QuestionNumber:
		value, err = s.askText(ctx, q, numberValidator(q.Required))
		value = answers.Numeric(value.String())
	default:
		value, err = s.askText(ctx, q, textValidator(q.Required))
	}
	if err != nil {
		return fmt.Errorf("tui: question %q: %w", q.ID, err)
	}
	if value.Kind() != answers.KindMulti && value.String() == "" {
		return s.view.ClearAnswer(q.ID)
	}
	return s.view.SetAnswer(q.ID, value)
}

func (s *session) askText(ctx context.Context, q formview.QuestionView, validator func(string) error) (answers.Value, error) {
	raw, err := s.r.driver.Input(ctx, InputConfig{
		Message:   questionLabel(q),
		Default:   q.Value,
		Help:      plainText(q.Description),
		Validator: validator,
	})
	if err != nil {
		return answers.Value{}, err
	}
	return answers.Text(strings.TrimSpace(raw)), nil
}

// askChoice offers the options; optional questions lead with a placeholder
// that clears the answer.
func (s *session) askChoice(ctx context.Context, q formview.QuestionView) (answers.Value, error) {
	var options []string
	offset := 0
	if !q.Required {
		options = append(options, formview.SelectPlaceholder)
		offset = 1
	}
	defaultIndex := 0
	for i, opt := range q.Options {
		options = append(options, opt.Label)
		if opt.Selected {
			defaultIndex = i + offset
		}
	}
	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      questionLabel(q),
		Options:      options,
		DefaultIndex: defaultIndex,
		Help:         plainText(q.Description),
	})
	if err != nil {
		return answers.Value{}, err
	}
	if idx < 0 || idx >= len(options) {
		return answers.Value{}, fmt.Errorf("choice %d out of range", idx)
	}
	if idx < offset {
		return answers.Text(""), nil
	}
	return answers.Text(q.Options[idx-offset].Value), nil
}

func (s *session) askMulti(ctx context.Context, q formview.QuestionView) (answers.Value, error) {
	options := make([]string, 0, len(q.Options))
	var defaults []int
	for i, opt := range q.Options {
		options = append(options, opt.Label)
		if opt.Selected {
			defaults = append(defaults, i)
		}
	}
	indices, err := s.r.driver.MultiSelect(ctx, SelectConfig{
		Message:  questionLabel(q),
		Options:  options,
		Defaults: defaults,
		Help:     plainText(q.Description),
	})
	if err != nil {
		return answers.Value{}, err
	}
	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(q.Options) {
			return answers.Value{}, fmt.Errorf("choice %d out of range", idx)
		}
		if value := q.Options[idx].Value; !slices.Contains(selected, value) {
			selected = append(selected, value)
		}
	}
	return answers.Multi(selected...), nil
}

func textValidator(required bool) func(string) error {
	return func(raw string) error {
		if required && strings.TrimSpace(raw) == "" {
			return errors.New(validation.RequiredMessage)
		}
		return nil
	}
}

func numberValidator(required bool) func(string) error {
	return func(raw string) error {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			if required {
				return errors.New(validation.RequiredMessage)
			}
			return nil
		}
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return errors.New(NumberMessage)
		}
		return nil
	}
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}
