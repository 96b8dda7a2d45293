package verification

import (
	"errors"
	"net/url"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formfill/pkg/client"
)

// Page copy.
const (
	DefaultTitle   = "Registration Status"
	ErrorTitle     = "Status Check Error"
	ReturnLabel    = "Return Home"
	RevokeLabel    = "Revoke Participation"
	DefaultPending = "Pending"
	// MissingParametersMessage is shown for a link without formId, email,
	// or token.
	MissingParametersMessage = "Missing required parameters"
)

// ErrMissingParameters is reported before any remote call when a
// verification link lacks formId, email, or token.
var ErrMissingParameters = errors.New("verification: missing required parameters")

// Params are the query parameters of a verification link.
type Params struct {
	FormID string
	Email  string
	Token  string
}

// ParseParams reads formId, email, and token from a link's query.
func ParseParams(query url.Values) (Params, error) {
	p := Params{
		FormID: strings.TrimSpace(query.Get("formId")),
		Email:  strings.TrimSpace(query.Get("email")),
		Token:  strings.TrimSpace(query.Get("token")),
	}
	if p.FormID == "" || p.Email == "" || p.Token == "" {
		return Params{}, ErrMissingParameters
	}
	return p, nil
}

// Request builds the backend payload for these parameters.
func (p Params) Request(domain string) client.VerificationRequest {
	return client.VerificationRequest{
		FormID:     p.FormID,
		Email:      p.Email,
		FinalToken: p.Token,
		Domain:     domain,
	}
}

// Query encodes the parameters back into a link query.
func (p Params) Query() url.Values {
	return url.Values{
		"formId": {p.FormID},
		"email":  {p.Email},
		"token":  {p.Token},
	}
}

// StatusClass maps a backend status onto a badge class.
func StatusClass(status string) string {
	switch status {
	case "Verified", "Approved", "Active":
		return "status-success"
	case "Pending", "Waitlist":
		return "status-pending"
	case "Rejected":
		return "status-rejected"
	default:
		return ""
	}
}

// StatusIcon maps a backend status onto a badge glyph.
func StatusIcon(status string) string {
	switch status {
	case "Verified", "Approved", "Active":
		return "✓"
	case "Pending", "Waitlist":
		return "⌛"
	case "Rejected":
		return "✕"
	default:
		return "•"
	}
}

// Badge is one status row.
type Badge struct {
	Label  string
	Status string
	Class  string
	Icon   string
}

func newBadge(label, status string) Badge {
	return Badge{Label: label, Status: status, Class: StatusClass(status), Icon: StatusIcon(status)}
}

// Landing is the render model of the verification page.
type Landing struct {
	Params       Params
	Title        string
	LogoURL      string
	Welcome      string
	Badges       []Badge
	Instructions string
	Description  string
	Theme        *theme.RendererConfig
}

// NewLanding combines link parameters with the backend's status data. The
// theme travels with the page rather than being applied globally.
func NewLanding(params Params, data client.VerificationData, assetPrefix string) Landing {
	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = DefaultTitle
	}
	landing := Landing{
		Params:       params,
		Title:        title,
		LogoURL:      data.Theme.LogoURL(),
		Welcome:      data.LandingWelcome,
		Instructions: data.LandingInstructions,
		Description:  data.Description,
		Theme:        data.Theme.RendererConfig(params.FormID, assetPrefix),
	}

	landing.Badges = append(landing.Badges, newBadge("Email: "+params.Email, data.VerificationStatus))
	if data.RequireHostApproval {
		approval := data.ApprovalStatus
		if approval == "" {
			approval = DefaultPending
		}
		landing.Badges = append(landing.Badges, newBadge("Registration Status:", approval))
	}
	if data.GuestCountStatus != "" {
		landing.Badges = append(landing.Badges, newBadge("Guest Status:", data.GuestCountStatus))
	}
	return landing
}
