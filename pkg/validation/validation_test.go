package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/testsupport"
	"github.com/goliatone/go-formfill/pkg/validation"
)

func TestValidate_SingleRequiredQuestion(t *testing.T) {
	t.Parallel()

	form := schema.Form{Sections: []schema.Section{{
		Questions: []schema.Question{{ID: "name", Type: schema.QuestionText, Question: "Name", Required: true}},
	}}}

	result := validation.Validate(form, answers.New())
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	want := map[string]string{"name": validation.RequiredMessage}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if validation.RequiredMessage != "This field is required" {
		t.Fatalf("unexpected required message %q", validation.RequiredMessage)
	}
}

func TestValidate_EmptinessRule(t *testing.T) {
	t.Parallel()

	form := schema.Form{Sections: []schema.Section{{
		Questions: []schema.Question{
			{ID: "text", Type: schema.QuestionText, Required: true},
			{ID: "boxes", Type: schema.QuestionCheckbox, Required: true, Options: []schema.Option{{Value: "a"}}},
			{ID: "filled", Type: schema.QuestionText, Required: true},
			{ID: "optional", Type: schema.QuestionText},
		},
	}}}
	store := answers.New()
	store.Set("text", answers.Text(""))
	store.Toggle("boxes", "a", true)
	store.Toggle("boxes", "a", false)
	store.Set("filled", answers.Text("x"))

	result := validation.Validate(form, store)
	want := map[string]string{"text": validation.RequiredMessage, "boxes": validation.RequiredMessage}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_HiddenQuestionsNeverReported(t *testing.T) {
	t.Parallel()

	form := testsupport.MeetupForm(t)
	store := testsupport.Answers(t, map[string]any{
		"email":     "ada@example.com",
		"name":      "Ada",
		"attending": "no",
		"age":       "45",
	})

	result := validation.Validate(form, store)
	if !result.Valid {
		t.Fatalf("expected valid result, got %v", result.Errors)
	}
}

func TestValidate_CompleteErrorSetInSchemaOrder(t *testing.T) {
	t.Parallel()

	form := testsupport.MeetupForm(t)
	store := testsupport.Answers(t, map[string]any{
		"email":     "ada@other.org",
		"attending": "yes",
		"allergies": []string{"gluten"},
		"age":       "18",
		"referral":  "friend",
	})

	result := validation.Validate(form, store)
	want := []validation.FieldError{
		{ID: "email", Message: "Email must end with @example.com"},
		{ID: "name", Message: validation.RequiredMessage},
		{ID: "guests", Message: validation.RequiredMessage},
		{ID: "diet", Message: validation.RequiredMessage},
		{ID: "allergyNotes", Message: validation.RequiredMessage},
		{ID: "mentoring", Message: validation.RequiredMessage},
		{ID: "referrer", Message: validation.RequiredMessage},
	}
	if diff := cmp.Diff(want, result.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
}

func TestValidate_EmailRequiredWhenCollected(t *testing.T) {
	t.Parallel()

	form := schema.Form{Metadata: schema.Metadata{RequireEmail: true}}
	result := validation.Validate(form, answers.New())
	if got := result.Message(validation.EmailKey); got != validation.RequiredMessage {
		t.Fatalf("email message = %q", got)
	}

	store := answers.New()
	store.Set(validation.EmailKey, answers.Text("not-an-email"))
	result = validation.Validate(form, store)
	if got := result.Message(validation.EmailKey); got != validation.InvalidEmailMessage {
		t.Fatalf("email message = %q", got)
	}

	form.Metadata.RequireEmail = false
	if result := validation.Validate(form, answers.New()); !result.Valid {
		t.Fatalf("email must not be checked when collection is off: %v", result.Errors)
	}
}

func TestValidate_OptionMembership(t *testing.T) {
	t.Parallel()

	form := testsupport.MeetupForm(t)
	store := testsupport.Answers(t, map[string]any{
		"email":        "ada@example.com",
		"name":         "Ada",
		"attending":    "yes",
		"guests":       "1",
		"diet":         "carnivore",
		"allergies":    []string{"nuts", "shellfish"},
		"allergyNotes": "mild",
		"age":          "40",
	})

	if result := validation.Validate(form, store); !result.Valid {
		t.Fatalf("membership must be off by default: %v", result.Errors)
	}

	result := validation.Validate(form, store, validation.WithOptionMembership())
	want := map[string]string{"diet": validation.OptionMessage, "allergies": validation.OptionMessage}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckEmail(t *testing.T) {
	t.Parallel()

	restricted := schema.Metadata{RequireEmail: true, AllowedEmailDomain: "example.com"}
	open := schema.Metadata{RequireEmail: true}

	cases := []struct {
		name    string
		meta    schema.Metadata
		address string
		wantErr error
	}{
		{name: "domain match", meta: restricted, address: "a@example.com"},
		{name: "domain mismatch", meta: restricted, address: "a@other.com", wantErr: validation.ErrEmailDomain},
		{name: "domain not an email", meta: restricted, address: "not-an-email", wantErr: validation.ErrEmailDomain},
		{name: "domain case sensitive", meta: restricted, address: "a@Example.com", wantErr: validation.ErrEmailDomain},
		{name: "open valid", meta: open, address: "a@other.com"},
		{name: "open invalid", meta: open, address: "not-an-email", wantErr: validation.ErrEmailSyntax},
		{name: "open whitespace", meta: open, address: "a b@c.d", wantErr: validation.ErrEmailSyntax},
		{name: "open no tld", meta: open, address: "a@localhost", wantErr: validation.ErrEmailSyntax},
	}
	for _, tc := range cases {
		err := validation.CheckEmail(tc.meta, tc.address)
		if tc.wantErr == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestEmailFeedbackAndHints(t *testing.T) {
	t.Parallel()

	restricted := schema.Metadata{AllowedEmailDomain: "example.com"}
	if got := validation.EmailFeedback(restricted, ""); got != "" {
		t.Fatalf("untouched email must not show feedback, got %q", got)
	}
	if got := validation.EmailFeedback(restricted, "a@example.com"); got != "" {
		t.Fatalf("valid email must not show feedback, got %q", got)
	}
	if got := validation.EmailFeedback(restricted, "a@other.com"); got != "Email must end with @example.com" {
		t.Fatalf("feedback = %q", got)
	}
	if got := validation.EmailFeedback(schema.Metadata{}, "nope"); got != validation.InvalidEmailMessage {
		t.Fatalf("feedback = %q", got)
	}

	if got := validation.EmailHint(restricted); got != "Please use your example.com email address" {
		t.Fatalf("hint = %q", got)
	}
	if got := validation.EmailPlaceholder(restricted); got != "username@example.com" {
		t.Fatalf("placeholder = %q", got)
	}
	if got := validation.EmailPlaceholder(schema.Metadata{}); got != "your.email@example.com" {
		t.Fatalf("placeholder = %q", got)
	}
}
