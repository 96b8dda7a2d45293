package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/validation"
)

const (
	// SuccessMessage is shown once the backend accepts a submission.
	SuccessMessage = "Thank you for your submission!"
	// DefaultRedirectDelay is how long the success view stays up before the
	// host navigates back to the list.
	DefaultRedirectDelay = 3 * time.Second
)

var (
	// ErrInFlight rejects a submit or edit while a submission is awaited.
	ErrInFlight = errors.New("submission: already submitting")
	// ErrCompleted rejects any transition out of the terminal success state.
	ErrCompleted = errors.New("submission: already submitted")
	// ErrRejected wraps a negative acknowledgement from the backend.
	ErrRejected = errors.New("submission: rejected")
)

// State is the lifecycle of one form view's submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Submission is the payload handed to the backend.
type Submission struct {
	AttemptID string
	FormID    string
	Domain    string
	Responses map[string]any
}

// Ack is the backend's answer to a submission. Error carries user-facing text
// for negative acknowledgements.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Submitter delivers submissions. Transport failures are returned as errors;
// a reachable backend that refuses the submission returns a negative Ack.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (Ack, error)
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) (Ack, error)

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, sub Submission) (Ack, error) {
	return fn(ctx, sub)
}

// Observer receives submission events, typically for metrics.
type Observer interface {
	ValidationFailed(formID string)
	Submitted(formID string, state State)
}

// Outcome describes the result of one Submit call.
type Outcome struct {
	AttemptID     string
	State         State
	Validation    validation.Result
	Message       string
	RedirectDelay time.Duration
}

// Machine drives idle -> submitting -> success|failed for one form view.
// State is guarded so a second caller observes ErrInFlight; the lock is not
// held while the backend is awaited.
type Machine struct {
	mu      sync.Mutex
	state   State
	message string

	logger        *slog.Logger
	observer      Observer
	domain        string
	redirectDelay time.Duration
	validateOpts  []validation.Option
	newID         func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver registers an event observer.
func WithObserver(observer Observer) Option {
	return func(m *Machine) {
		m.observer = observer
	}
}

// WithDomain sets the origin reported to the backend alongside responses.
func WithDomain(domain string) Option {
	return func(m *Machine) {
		m.domain = domain
	}
}

// WithRedirectDelay overrides DefaultRedirectDelay.
func WithRedirectDelay(delay time.Duration) Option {
	return func(m *Machine) {
		if delay >= 0 {
			m.redirectDelay = delay
		}
	}
}

// WithValidationOptions forwards options to every validation pass.
func WithValidationOptions(opts ...validation.Option) Option {
	return func(m *Machine) {
		m.validateOpts = append(m.validateOpts, opts...)
	}
}

// WithIDGenerator replaces the attempt id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMachine returns a machine in the idle state.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		logger:        slog.Default(),
		redirectDelay: DefaultRedirectDelay,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Message returns the failure text of the last attempt, or the success
// message once the submission succeeded.
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Edit records that the user changed an answer. A failed machine returns to
// idle; edits are rejected while submitting and after success.
func (m *Machine) Edit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateSubmitting:
		return ErrInFlight
	case StateSuccess:
		return ErrCompleted
	case StateFailed:
		m.state = StateIdle
		m.message = ""
	}
	return nil
}

// Submit validates values against form and, when valid, hands the answers to
// submitter. An invalid form never reaches the submitter and leaves the
// machine idle. values is only read.
func (m *Machine) Submit(ctx context.Context, form schema.Form, values *answers.Store, submitter Submitter) (Outcome, error) {
	if submitter == nil {
		return Outcome{}, errors.New("submission: submitter is required")
	}

	m.mu.Lock()
	switch m.state {
	case StateSubmitting:
		m.mu.Unlock()
		return Outcome{State: StateSubmitting}, ErrInFlight
	case StateSuccess:
		m.mu.Unlock()
		return Outcome{State: StateSuccess, Message: SuccessMessage}, ErrCompleted
	}

	result := validation.Validate(form, values, m.validateOpts...)
	if !result.Valid {
		m.state = StateIdle
		m.message = ""
		m.mu.Unlock()
		m.logger.Debug("submission blocked by validation", "form_id", form.ID, "errors", len(result.Errors))
		if m.observer != nil {
			m.observer.ValidationFailed(form.ID)
		}
		return Outcome{State: StateIdle, Validation: result}, nil
	}

	attempt := m.newID()
	m.state = StateSubmitting
	m.message = ""
	m.mu.Unlock()

	logger := m.logger.With("form_id", form.ID, "attempt_id", attempt)
	logger.Info("submitting form")

	ack, err := submitter.Submit(ctx, Submission{
		AttemptID: attempt,
		FormID:    form.ID,
		Domain:    m.domain,
		Responses: values.Payload(),
	})
	if err == nil && !ack.Success {
		err = ErrRejected
		if ack.Error != "" {
			err = fmt.Errorf("%w: %s", ErrRejected, ack.Error)
		}
	}

	outcome := Outcome{AttemptID: attempt, Validation: result}

	m.mu.Lock()
	if err != nil {
		m.state = StateFailed
		m.message = FailureMessage(err, ack)
		outcome.State = StateFailed
		outcome.Message = m.message
	} else {
		m.state = StateSuccess
		m.message = SuccessMessage
		outcome.State = StateSuccess
		outcome.Message = SuccessMessage
		outcome.RedirectDelay = m.redirectDelay
	}
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.Submitted(form.ID, outcome.State)
	}
	if err != nil {
		logger.Warn("submission failed", "error", err)
		return outcome, err
	}
	logger.Info("submission accepted")
	return outcome, nil
}

// PublicError is implemented by errors that carry text meant for the person
// filling the form.
type PublicError interface {
	PublicMessage() string
}

// FailureMessage extracts the text shown for a failed attempt: the backend's
// rejection message when there is one, otherwise the error text.
func FailureMessage(err error, ack Ack) string {
	if ack.Error != "" && !ack.Success {
		return ack.Error
	}
	var public PublicError
	if errors.As(err, &public) {
		if msg := public.PublicMessage(); msg != "" {
			return msg
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
