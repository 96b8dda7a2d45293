package verification

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/schema"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	params, err := ParseParams(url.Values{"formId": {"meetup"}, "email": {"ada@example.com"}, "token": {"abc"}})
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if diff := cmp.Diff(Params{FormID: "meetup", Email: "ada@example.com", Token: "abc"}, params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if got := params.Request("https://forms.example.com"); got.FinalToken != "abc" || got.Domain != "https://forms.example.com" {
		t.Fatalf("unexpected request %+v", got)
	}

	for _, query := range []url.Values{
		{},
		{"formId": {"meetup"}, "email": {"ada@example.com"}},
		{"formId": {"meetup"}, "email": {" "}, "token": {"abc"}},
	} {
		if _, err := ParseParams(query); !errors.Is(err, ErrMissingParameters) {
			t.Fatalf("query %v: expected ErrMissingParameters, got %v", query, err)
		}
	}
	if ErrMissingParameters.Error() != "verification: missing required parameters" {
		t.Fatalf("unexpected message %q", ErrMissingParameters)
	}
}

func TestStatusBadges(t *testing.T) {
	t.Parallel()

	cases := map[string][2]string{
		"Verified": {"status-success", "✓"},
		"Approved": {"status-success", "✓"},
		"Active":   {"status-success", "✓"},
		"Pending":  {"status-pending", "⌛"},
		"Waitlist": {"status-pending", "⌛"},
		"Rejected": {"status-rejected", "✕"},
		"3":        {"", "•"},
		"":         {"", "•"},
	}
	for status, want := range cases {
		if got := StatusClass(status); got != want[0] {
			t.Fatalf("StatusClass(%q) = %q, want %q", status, got, want[0])
		}
		if got := StatusIcon(status); got != want[1] {
			t.Fatalf("StatusIcon(%q) = %q, want %q", status, got, want[1])
		}
	}
}

func TestNewLanding(t *testing.T) {
	t.Parallel()

	params := Params{FormID: "meetup", Email: "ada@example.com", Token: "abc"}
	data := client.VerificationData{
		Theme:               schema.Theme{PrimaryColor: "#123456", Logo: &schema.Logo{URL: "https://cdn.example.com/logo.png"}},
		VerificationStatus:  "Verified",
		RequireHostApproval: true,
		GuestCountStatus:    "2",
	}

	landing := NewLanding(params, data, "/static")
	if landing.Title != DefaultTitle {
		t.Fatalf("title = %q", landing.Title)
	}
	if landing.LogoURL != "https://cdn.example.com/logo.png" {
		t.Fatalf("logo = %q", landing.LogoURL)
	}
	want := []Badge{
		{Label: "Email: ada@example.com", Status: "Verified", Class: "status-success", Icon: "✓"},
		{Label: "Registration Status:", Status: "Pending", Class: "status-pending", Icon: "⌛"},
		{Label: "Guest Status:", Status: "2", Class: "", Icon: "•"},
	}
	if diff := cmp.Diff(want, landing.Badges); diff != "" {
		t.Fatalf("badges mismatch (-want +got):\n%s", diff)
	}
	if landing.Theme.CSSVars["--primary-color"] != "#123456" || landing.Theme.CSSVars["--font-family"] != schema.DefaultFontFamily {
		t.Fatalf("unexpected theme vars %v", landing.Theme.CSSVars)
	}

	data.RequireHostApproval = false
	data.GuestCountStatus = ""
	if got := NewLanding(params, data, "").Badges; len(got) != 1 {
		t.Fatalf("expected only the email badge, got %+v", got)
	}
}
