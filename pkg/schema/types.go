package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfill/pkg/condition"
)

// QuestionType enumerates the supported input widgets.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionNumber   QuestionType = "number"
	QuestionSelect   QuestionType = "select"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
)

// Valid reports whether t belongs to the closed set of question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionNumber, QuestionSelect, QuestionRadio, QuestionCheckbox:
		return true
	default:
		return false
	}
}

// HasOptions reports whether answers are picked from Question.Options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSelect || t == QuestionRadio || t == QuestionCheckbox
}

// Form is the static definition of one form. It is loaded once per view and
// treated as immutable afterwards.
type Form struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Metadata carries form-level presentation and email collection settings.
// The landing fields feed the verification page shown after registration.
type Metadata struct {
	Title              string `json:"title,omitempty" yaml:"title,omitempty"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`
	Theme              Theme  `json:"theme" yaml:"theme"`
	RequireEmail       bool   `json:"requireEmail,omitempty" yaml:"requireEmail,omitempty"`
	AllowedEmailDomain string `json:"allowedEmailDomain,omitempty" yaml:"allowedEmailDomain,omitempty"`
	Author             string `json:"author,omitempty" yaml:"author,omitempty"`

	RequireHostApproval bool   `json:"requireHostApproval,omitempty" yaml:"requireHostApproval,omitempty"`
	LandingWelcome      string `json:"landingWelcome,omitempty" yaml:"landingWelcome,omitempty"`
	LandingInstructions string `json:"landingInstructions,omitempty" yaml:"landingInstructions,omitempty"`
}

// Section groups questions and may be hidden as a whole.
type Section struct {
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	ShowWhen    *Rule      `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is a single input. ID is unique within the form.
type Question struct {
	ID          string       `json:"id" yaml:"id"`
	Type        QuestionType `json:"type" yaml:"type"`
	Question    string       `json:"question" yaml:"question"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	ShowWhen    *Rule        `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
}

// Option is one choice of a select, radio, or checkbox question.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// HasOption reports whether value is one of the declared option values.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Summary is the listing shape returned by the forms catalogue.
type Summary struct {
	ID       string          `json:"id"`
	Metadata SummaryMetadata `json:"metadata"`
}

// SummaryMetadata is the subset of Metadata shown in listings.
type SummaryMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
}

// Summary projects the form into its listing shape.
func (f Form) Summary() Summary {
	return Summary{
		ID: f.ID,
		Metadata: SummaryMetadata{
			Title:       f.Metadata.Title,
			Description: f.Metadata.Description,
			Author:      f.Metadata.Author,
		},
	}
}

// Question returns the question with the given id.
func (f Form) Question(id string) (Question, bool) {
	for _, section := range f.Sections {
		for _, q := range section.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// QuestionIDs lists every question id in schema order.
func (f Form) QuestionIDs() []string {
	var ids []string
	for _, section := range f.Sections {
		for _, q := range section.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Controllers returns the ids of questions referenced by an enabled showWhen
// rule. Changing one of these answers can change what is visible.
func (f Form) Controllers() map[string]bool {
	out := make(map[string]bool)
	mark := func(r *Rule) {
		if r.Enabled() {
			out[r.QuestionID] = true
		}
	}
	for _, section := range f.Sections {
		mark(section.ShowWhen)
		for _, q := range section.Questions {
			mark(q.ShowWhen)
		}
	}
	return out
}

// Compile parses every showWhen rule that has not been compiled yet. Decoding
// through JSON or YAML already compiles rules; Compile covers forms built in
// code.
func (f *Form) Compile() {
	for i := range f.Sections {
		f.Sections[i].ShowWhen.compile()
		for j := range f.Sections[i].Questions {
			f.Sections[i].Questions[j].ShowWhen.compile()
		}
	}
}

// Rule gates visibility on another question's answer. Equals holds the raw
// condition string; the parsed condition is kept alongside it.
type Rule struct {
	QuestionID string
	Equals     string

	compiled bool
	cond     condition.Condition
}

// NewRule builds a compiled rule.
func NewRule(questionID, equals string) *Rule {
	r := &Rule{QuestionID: questionID, Equals: equals}
	r.compile()
	return r
}

func (r *Rule) compile() {
	if r == nil || r.compiled {
		return
	}
	r.compiled = true
	r.cond = condition.Parse(r.Equals)
}

// Enabled reports whether the rule gates anything. Rules without a question
// reference or without a condition are disabled and leave their target
// visible. A malformed range stays enabled and hides its target.
func (r *Rule) Enabled() bool {
	return r != nil && strings.TrimSpace(r.QuestionID) != "" && r.Equals != ""
}

// Condition returns the parsed condition and whether the rule is enabled.
func (r *Rule) Condition() (condition.Condition, bool) {
	if !r.Enabled() {
		return condition.Condition{}, false
	}
	return r.parsed(), true
}

// Err reports a range condition that can never match.
func (r *Rule) Err() error {
	if r == nil || r.Equals == "" {
		return nil
	}
	return r.parsed().Problem()
}

func (r *Rule) parsed() condition.Condition {
	if r.compiled {
		return r.cond
	}
	return condition.Parse(r.Equals)
}

type ruleWire struct {
	QuestionID string `json:"questionId" yaml:"questionId"`
	Equals     any    `json:"equals,omitempty" yaml:"equals,omitempty"`
}

// MarshalJSON writes the wire shape.
func (r Rule) MarshalJSON() ([]byte, error) {
	wire := ruleWire{QuestionID: r.QuestionID}
	if r.Equals != "" {
		wire.Equals = r.Equals
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reads the wire shape and compiles the condition.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var wire ruleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("schema: decode showWhen: %w", err)
	}
	*r = Rule{QuestionID: wire.QuestionID, Equals: scalarString(wire.Equals)}
	r.compile()
	return nil
}

// MarshalYAML writes the wire shape.
func (r Rule) MarshalYAML() (any, error) {
	wire := ruleWire{QuestionID: r.QuestionID}
	if r.Equals != "" {
		wire.Equals = r.Equals
	}
	return wire, nil
}

// UnmarshalYAML reads the wire shape and compiles the condition.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var wire ruleWire
	if err := node.Decode(&wire); err != nil {
		return fmt.Errorf("schema: decode showWhen: %w", err)
	}
	*r = Rule{QuestionID: wire.QuestionID, Equals: scalarString(wire.Equals)}
	r.compile()
	return nil
}

// scalarString normalises non-string `equals` payloads into their literal
// text. Falsy scalars (false, 0) mean no condition, like an empty string.
func scalarString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if !typed {
			return ""
		}
		return strconv.FormatBool(typed)
	case float64:
		if typed == 0 {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		if typed == 0 {
			return ""
		}
		return strconv.Itoa(typed)
	default:
		return fmt.Sprint(typed)
	}
}
