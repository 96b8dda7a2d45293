package schema

import (
	"fmt"
	"strings"
)

// ReservedEmailKey is the answer key used for the collected email address.
const ReservedEmailKey = "email"

// Issue is a lint finding with optional location metadata. Lint findings are
// advisory: forms with issues still load and malformed rules fall back to
// "always visible".
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Lint reports authoring mistakes in form.
func Lint(form Form) []Issue {
	var issues []Issue
	add := func(path, field, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	known := make(map[string]int)
	for _, id := range form.QuestionIDs() {
		known[id]++
	}

	for si, section := range form.Sections {
		sectionPath := fmt.Sprintf("sections[%d]", si)
		lintRule(section.ShowWhen, sectionPath+".showWhen", "", known, add)

		for qi, q := range section.Questions {
			qPath := fmt.Sprintf("%s.questions[%d]", sectionPath, qi)
			id := strings.TrimSpace(q.ID)
			if id == "" {
				add(qPath, "", "question id is required")
			} else if known[q.ID] > 1 {
				add(qPath, q.ID, "duplicate question id %q", q.ID)
			}
			if form.Metadata.RequireEmail && q.ID == ReservedEmailKey {
				add(qPath, q.ID, "question id %q collides with the collected email address", q.ID)
			}
			if !q.Type.Valid() {
				add(qPath, q.ID, "unknown question type %q", q.Type)
			}
			if q.Type.HasOptions() && len(q.Options) == 0 {
				add(qPath, q.ID, "%s question has no options", q.Type)
			}
			lintRule(q.ShowWhen, qPath+".showWhen", q.ID, known, add)
		}
	}
	return issues
}

func lintRule(rule *Rule, path, field string, known map[string]int, add func(path, field, format string, args ...any)) {
	if rule == nil {
		return
	}
	if strings.TrimSpace(rule.QuestionID) == "" {
		add(path, field, "showWhen has no questionId; rule ignored")
		return
	}
	if known[rule.QuestionID] == 0 {
		add(path, field, "showWhen references unknown question %q", rule.QuestionID)
	}
	if rule.Equals == "" {
		add(path, field, "showWhen has no equals condition; rule ignored")
		return
	}
	if err := rule.Err(); err != nil {
		add(path, field, "%v; target never shown", err)
	}
}
