package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
)

// DefaultServiceID names the backend script that owns the form actions.
const DefaultServiceID = "form_script"

// Actions understood by the backend.
const (
	ActionPublicForms         = "getPublicForms"
	ActionPublicForm          = "getPublicForm"
	ActionSubmitFormResponse  = "submitFormResponse"
	ActionVerificationData    = "getFormVerificationData"
	ActionRevokeParticipation = "revokeFormParticipation"
)

// ErrFormNotFound reports an unknown or unpublished form id.
var ErrFormNotFound = errors.New("client: form not found")

// FormsResult is the getPublicForms result.
type FormsResult struct {
	Forms []schema.Summary `json:"forms"`
}

// FormRequest is the getPublicForm payload.
type FormRequest struct {
	FormID string `json:"formId"`
}

// FormResult is the getPublicForm result.
type FormResult struct {
	Form *schema.Form `json:"form"`
}

// SubmitRequest is the submitFormResponse payload.
type SubmitRequest struct {
	Domain    string         `json:"domain"`
	FormID    string         `json:"formId"`
	Responses map[string]any `json:"responses"`
}

// VerificationRequest is the payload of the verification lookup and revoke
// actions.
type VerificationRequest struct {
	FormID     string `json:"formId"`
	Email      string `json:"email"`
	FinalToken string `json:"finalToken"`
	Domain     string `json:"domain"`
}

// VerificationData is the participation status shown on the landing page.
type VerificationData struct {
	Title               string       `json:"title"`
	Theme               schema.Theme `json:"theme"`
	VerificationStatus  string       `json:"verificationStatus"`
	ApprovalStatus      string       `json:"approvalStatus,omitempty"`
	GuestCountStatus    string       `json:"guestCountStatus,omitempty"`
	RequireHostApproval bool         `json:"requireHostApproval"`
	LandingWelcome      string       `json:"landingWelcome,omitempty"`
	LandingInstructions string       `json:"landingInstructions,omitempty"`
	Description         string       `json:"description,omitempty"`
}

// CallObserver receives the duration and result of every remote call.
type CallObserver interface {
	ObserveCall(action string, duration time.Duration, err error)
}

// Service is the typed facade over an Invoker.
type Service struct {
	invoker   Invoker
	serviceID string
	logger    *slog.Logger
	observer  CallObserver
}

// Option configures a Service.
type Option func(*Service)

// WithServiceID overrides DefaultServiceID.
func WithServiceID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.serviceID = id
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCallObserver registers a call observer.
func WithCallObserver(observer CallObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// NewService wraps invoker.
func NewService(invoker Invoker, opts ...Option) *Service {
	s := &Service{
		invoker:   invoker,
		serviceID: DefaultServiceID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var _ submission.Submitter = (*Service)(nil)

// PublicForms lists the published forms.
func (s *Service) PublicForms(ctx context.Context) ([]schema.Summary, error) {
	var result FormsResult
	if err := s.call(ctx, ActionPublicForms, nil, &result); err != nil {
		return nil, err
	}
	return result.Forms, nil
}

// PublicForm fetches one form and compiles its rules.
func (s *Service) PublicForm(ctx context.Context, formID string) (schema.Form, error) {
	var result FormResult
	if err := s.call(ctx, ActionPublicForm, FormRequest{FormID: formID}, &result); err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
			return schema.Form{}, fmt.Errorf("%w: %w", ErrFormNotFound, err)
		}
		return schema.Form{}, err
	}
	if result.Form == nil {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}
	form := *result.Form
	if form.ID == "" {
		form.ID = formID
	}
	form.Compile()
	return form, nil
}

// SubmitFormResponse posts one set of responses.
func (s *Service) SubmitFormResponse(ctx context.Context, req SubmitRequest) (submission.Ack, error) {
	var ack submission.Ack
	if err := s.call(ctx, ActionSubmitFormResponse, req, &ack); err != nil {
		return submission.Ack{}, err
	}
	return ack, nil
}

// Submit satisfies submission.Submitter.
func (s *Service) Submit(ctx context.Context, sub submission.Submission) (submission.Ack, error) {
	return s.SubmitFormResponse(ctx, SubmitRequest{
		Domain:    sub.Domain,
		FormID:    sub.FormID,
		Responses: sub.Responses,
	})
}

// VerificationData looks up the participation status behind a
// verification link.
func (s *Service) VerificationData(ctx context.Context, req VerificationRequest) (VerificationData, error) {
	var data VerificationData
	if err := s.call(ctx, ActionVerificationData, req, &data); err != nil {
		return VerificationData{}, err
	}
	return data, nil
}

// RevokeParticipation withdraws a registration.
func (s *Service) RevokeParticipation(ctx context.Context, req VerificationRequest) error {
	var ack submission.Ack
	if err := s.call(ctx, ActionRevokeParticipation, req, &ack); err != nil {
		return err
	}
	if !ack.Success && ack.Error != "" {
		return &RemoteError{Status: http.StatusOK, Action: ActionRevokeParticipation, Message: ack.Error}
	}
	return nil
}

func (s *Service) call(ctx context.Context, action string, payload, out any) error {
	if s.invoker == nil {
		return errors.New("client: invoker is required")
	}
	start := time.Now()
	err := s.invoker.Invoke(ctx, s.serviceID, action, payload, out)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveCall(action, elapsed, err)
	}
	if err != nil {
		s.logger.Warn("remote call failed", "service", s.serviceID, "action", action, "duration", elapsed, "error", err)
		return err
	}
	s.logger.Debug("remote call", "service", s.serviceID, "action", action, "duration", elapsed)
	return nil
}
