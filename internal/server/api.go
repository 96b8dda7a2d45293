package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formfill/pkg/answers"
	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
)

//go:embed openapi.yaml
var openAPIDocument []byte

const (
	responsesSchema = "ResponsesRequest"
	maxBodyBytes    = 1 << 20
)

// apiDescription is the validated OpenAPI document of the JSON API.
type apiDescription struct {
	doc  *openapi3.T
	json []byte
}

func loadAPIDescription(ctx context.Context) (*apiDescription, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("server: load api description: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("server: validate api description: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("server: encode api description: %w", err)
	}
	return &apiDescription{doc: doc, json: raw}, nil
}

// check validates a decoded request body against a component schema.
func (a *apiDescription) check(name string, body any) error {
	ref, ok := a.doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("server: unknown schema %q", name)
	}
	return ref.Value.VisitJSON(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Valid            bool                    `json:"valid"`
	Errors           []validation.FieldError `json:"errors,omitempty"`
	VisibleQuestions []string                `json:"visibleQuestions"`
}

type submitResponse struct {
	Success   bool                    `json:"success"`
	State     string                  `json:"state"`
	Message   string                  `json:"message,omitempty"`
	AttemptID string                  `json:"attemptId,omitempty"`
	Errors    []validation.FieldError `json:"errors,omitempty"`
}

func (s *Server) handleAPIDescription(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.api.json)
}

func (s *Server) handleAPIForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.backend.PublicForms(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: submission.FailureMessage(err, submission.Ack{})})
		return
	}
	if forms == nil {
		forms = []schema.Summary{}
	}
	writeJSON(w, http.StatusOK, client.FormsResult{Forms: forms})
}

func (s *Server) handleAPIForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.apiForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, client.FormResult{Form: &form})
}

// handleAPIValidate reports errors and the visible questions for a set of
// answers without contacting the backend.
func (s *Server) handleAPIValidate(w http.ResponseWriter, r *http.Request) {
	form, ok := s.apiForm(w, r)
	if !ok {
		return
	}
	store, ok := s.decodeResponses(w, r)
	if !ok {
		return
	}
	view := s.newView(r, form, formview.WithAnswers(store))
	result := view.Validate()

	visible := []string{}
	for _, section := range view.Sections() {
		for _, q := range section.Questions {
			visible = append(visible, q.ID)
		}
	}
	writeJSON(w, http.StatusOK, validationResponse{
		Valid:            result.Valid,
		Errors:           result.Messages(),
		VisibleQuestions: visible,
	})
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := s.apiForm(w, r)
	if !ok {
		return
	}
	store, ok := s.decodeResponses(w, r)
	if !ok {
		return
	}
	view := s.newView(r, form, formview.WithAnswers(store))
	outcome, err := view.Submit(r.Context())

	resp := submitResponse{
		Success:   outcome.State == submission.StateSuccess,
		State:     outcome.State.String(),
		Message:   outcome.Message,
		AttemptID: outcome.AttemptID,
	}
	switch {
	case outcome.State == submission.StateSuccess:
		writeJSON(w, http.StatusOK, resp)
	case outcome.State == submission.StateFailed:
		writeJSON(w, http.StatusBadGateway, resp)
	case err == nil:
		resp.Errors = outcome.Validation.Messages()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		s.logger.ErrorContext(r.Context(), "api submit failed", "form_id", form.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) apiForm(w http.ResponseWriter, r *http.Request) (schema.Form, bool) {
	formID := chi.URLParam(r, "formID")
	form, err := s.backend.PublicForm(r.Context(), formID)
	switch {
	case err == nil:
		return form, true
	case errors.Is(err, client.ErrFormNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: NotFoundMessage})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: submission.FailureMessage(err, submission.Ack{})})
	}
	return schema.Form{}, false
}

// decodeResponses reads a responses body, checks it against the published
// schema, and builds an answer store from it.
func (s *Server) decodeResponses(w http.ResponseWriter, r *http.Request) (*answers.Store, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body: " + err.Error()})
		return nil, false
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body: " + err.Error()})
		return nil, false
	}
	if err := s.api.check(responsesSchema, generic); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body: " + err.Error()})
		return nil, false
	}

	body, _ := generic.(map[string]any)
	responses, _ := body["responses"].(map[string]any)
	store, err := answers.FromPayload(responses)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return store, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
