package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
)

// Backend status values.
const (
	StatusVerified = "Verified"
	StatusPending  = "Pending"
)

// GuestCountKey is the answer whose value is reported as the guest count on
// the verification page.
const GuestCountKey = "guests"

// DuplicateSubmissionMessage is returned when an email registers twice for
// the same form.
const DuplicateSubmissionMessage = "This email has already submitted a response"

type registration struct {
	token     string
	domain    string
	responses map[string]any
}

// MemoryInvoker is an in-process backend over a catalog. It answers the same
// actions as the remote service and is safe for concurrent use.
type MemoryInvoker struct {
	catalog *schema.Catalog
	logger  *slog.Logger
	newID   func() string

	mu            sync.Mutex
	registrations map[string]map[string]registration
}

// MemoryOption configures a MemoryInvoker.
type MemoryOption func(*MemoryInvoker)

// WithMemoryLogger sets the structured logger.
func WithMemoryLogger(logger *slog.Logger) MemoryOption {
	return func(m *MemoryInvoker) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTokenGenerator replaces the verification token generator.
func WithTokenGenerator(fn func() string) MemoryOption {
	return func(m *MemoryInvoker) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMemoryInvoker serves the forms in catalog.
func NewMemoryInvoker(catalog *schema.Catalog, opts ...MemoryOption) *MemoryInvoker {
	m := &MemoryInvoker{
		catalog:       catalog,
		logger:        slog.Default(),
		newID:         uuid.NewString,
		registrations: make(map[string]map[string]registration),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Invoke dispatches one action. The payload and result pass through JSON so
// callers see the same shapes as over HTTP.
func (m *MemoryInvoker) Invoke(ctx context.Context, serviceID, action string, payload, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var result any
	switch action {
	case ActionPublicForms:
		result = FormsResult{Forms: m.catalog.List()}
	case ActionPublicForm:
		var req FormRequest
		if err := roundTrip(payload, &req); err != nil {
			return fmt.Errorf("client: %s: %w", action, err)
		}
		form, ok := m.catalog.Get(req.FormID)
		if !ok {
			return &RemoteError{Status: http.StatusNotFound, Action: action, Message: "Form not found"}
		}
		result = FormResult{Form: &form}
	case ActionSubmitFormResponse:
		var req SubmitRequest
		if err := roundTrip(payload, &req); err != nil {
			return fmt.Errorf("client: %s: %w", action, err)
		}
		result = m.submit(req)
	case ActionVerificationData:
		var req VerificationRequest
		if err := roundTrip(payload, &req); err != nil {
			return fmt.Errorf("client: %s: %w", action, err)
		}
		data, err := m.verification(req)
		if err != nil {
			return err
		}
		result = data
	case ActionRevokeParticipation:
		var req VerificationRequest
		if err := roundTrip(payload, &req); err != nil {
			return fmt.Errorf("client: %s: %w", action, err)
		}
		if _, err := m.lookup(req); err != nil {
			return err
		}
		m.mu.Lock()
		delete(m.registrations[req.FormID], req.Email)
		m.mu.Unlock()
		m.logger.Info("participation revoked", "service", serviceID, "form_id", req.FormID)
		result = submission.Ack{Success: true}
	default:
		return &RemoteError{Status: http.StatusBadRequest, Action: action, Message: "Unknown action: " + action}
	}

	if out == nil {
		return nil
	}
	return roundTrip(result, out)
}

// Token returns the verification token issued for email, if any.
func (m *MemoryInvoker) Token(formID, email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[formID][email]
	return reg.token, ok
}

func (m *MemoryInvoker) submit(req SubmitRequest) submission.Ack {
	form, ok := m.catalog.Get(req.FormID)
	if !ok {
		return submission.Ack{Error: "Form not found"}
	}
	email, _ := req.Responses[validation.EmailKey].(string)
	email = strings.TrimSpace(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	forms := m.registrations[req.FormID]
	if forms == nil {
		forms = make(map[string]registration)
		m.registrations[req.FormID] = forms
	}
	if email != "" {
		if _, exists := forms[email]; exists {
			return submission.Ack{Error: DuplicateSubmissionMessage}
		}
	} else if form.Metadata.RequireEmail {
		return submission.Ack{Error: "An email address is required"}
	} else {
		email = m.newID()
	}

	reg := registration{token: m.newID(), domain: req.Domain, responses: req.Responses}
	forms[email] = reg
	m.logger.Info("form response stored", "form_id", req.FormID, "verification_token", reg.token)
	return submission.Ack{Success: true}
}

func (m *MemoryInvoker) lookup(req VerificationRequest) (registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[req.FormID][req.Email]
	if !ok || reg.token != req.FinalToken {
		return registration{}, &RemoteError{Status: http.StatusNotFound, Message: "No registration matches this link"}
	}
	return reg, nil
}

func (m *MemoryInvoker) verification(req VerificationRequest) (VerificationData, error) {
	reg, err := m.lookup(req)
	if err != nil {
		return VerificationData{}, err
	}
	form, ok := m.catalog.Get(req.FormID)
	if !ok {
		return VerificationData{}, &RemoteError{Status: http.StatusNotFound, Action: ActionVerificationData, Message: "Form not found"}
	}
	meta := form.Metadata
	data := VerificationData{
		Title:               meta.Title,
		Theme:               meta.Theme,
		VerificationStatus:  StatusVerified,
		RequireHostApproval: meta.RequireHostApproval,
		LandingWelcome:      meta.LandingWelcome,
		LandingInstructions: meta.LandingInstructions,
		Description:         meta.Description,
	}
	if meta.RequireHostApproval {
		data.ApprovalStatus = StatusPending
	}
	if guests, ok := reg.responses[GuestCountKey]; ok {
		data.GuestCountStatus = fmt.Sprint(guests)
	}
	return data, nil
}

func roundTrip(in, out any) error {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
