package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/formview"
	"github.com/goliatone/go-formfill/pkg/render"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/verification"
)

// Page copy owned by the host.
const (
	NotFoundTitle   = "Form Not Found"
	NotFoundMessage = "This form does not exist or is no longer available."
	LoadErrorTitle  = "Unable to Load Form"
	BadRequestTitle = "Invalid Request"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	forms, err := s.backend.PublicForms(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "list forms failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		s.renderError(w, r, http.StatusBadGateway, LoadErrorTitle, submission.FailureMessage(err, submission.Ack{}))
		return
	}
	s.renderPage(w, r, http.StatusOK, render.Page{Kind: render.KindList, Forms: forms})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	s.renderForm(w, r, http.StatusOK, s.newView(r, form))
}

// handleFormPost binds the posted answers. A refresh re-renders with the new
// visibility; anything else is a submit attempt.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, BadRequestTitle, err.Error())
		return
	}
	view := s.newView(r, form)
	if err := view.Bind(r.PostForm); err != nil {
		s.renderError(w, r, http.StatusBadRequest, BadRequestTitle, err.Error())
		return
	}
	if formview.PostedAction(r.PostForm) == formview.ActionRefresh {
		s.renderForm(w, r, http.StatusOK, view)
		return
	}

	outcome, err := view.Submit(r.Context())
	switch outcome.State {
	case submission.StateSuccess:
		s.renderPage(w, r, http.StatusOK, render.Page{
			Kind: render.KindSuccess,
			Success: &render.SuccessPage{
				Message: outcome.Message,
				Delay:   outcome.RedirectDelay,
			},
		})
	case submission.StateFailed:
		s.renderForm(w, r, http.StatusBadGateway, view)
	case submission.StateIdle:
		if err != nil {
			s.logger.ErrorContext(r.Context(), "submit form failed", "form_id", form.ID, "error", err)
			s.renderError(w, r, http.StatusInternalServerError, LoadErrorTitle, err.Error())
			return
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, view)
	default:
		s.renderError(w, r, http.StatusConflict, LoadErrorTitle, submission.FailureMessage(err, submission.Ack{}))
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	params, err := verification.ParseParams(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, verification.ErrorTitle, verification.MissingParametersMessage)
		return
	}
	data, err := s.backend.VerificationData(r.Context(), params.Request(s.origin(r)))
	if err != nil {
		s.logger.WarnContext(r.Context(), "verification lookup failed", "form_id", params.FormID, "error", err)
		s.renderError(w, r, http.StatusBadGateway, verification.ErrorTitle, submission.FailureMessage(err, submission.Ack{}))
		return
	}
	landing := verification.NewLanding(params, data, s.assetPrefix)
	s.renderPage(w, r, http.StatusOK, render.Page{Kind: render.KindVerify, Landing: &landing})
}

// handleRevoke withdraws the registration named by the posted link parameters
// and returns to the list.
func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, verification.ErrorTitle, err.Error())
		return
	}
	params, err := verification.ParseParams(r.PostForm)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, verification.ErrorTitle, verification.MissingParametersMessage)
		return
	}
	if err := s.backend.RevokeParticipation(r.Context(), params.Request(s.origin(r))); err != nil {
		s.logger.WarnContext(r.Context(), "revoke failed", "form_id", params.FormID, "error", err)
		s.renderError(w, r, http.StatusBadGateway, verification.ErrorTitle, submission.FailureMessage(err, submission.Ack{}))
		return
	}
	s.logger.InfoContext(r.Context(), "participation revoked", "form_id", params.FormID)
	http.Redirect(w, r, s.basePath+"/", http.StatusSeeOther)
}

func (s *Server) loadForm(w http.ResponseWriter, r *http.Request) (schema.Form, bool) {
	formID := chi.URLParam(r, "formID")
	form, err := s.backend.PublicForm(r.Context(), formID)
	switch {
	case err == nil:
		return form, true
	case errors.Is(err, client.ErrFormNotFound):
		s.renderError(w, r, http.StatusNotFound, NotFoundTitle, NotFoundMessage)
	default:
		s.logger.WarnContext(r.Context(), "load form failed", "form_id", formID, "error", err)
		s.renderError(w, r, http.StatusBadGateway, LoadErrorTitle, submission.FailureMessage(err, submission.Ack{}))
	}
	return schema.Form{}, false
}

func (s *Server) newView(r *http.Request, form schema.Form, extra ...formview.Option) *formview.View {
	machineOpts := []submission.Option{
		submission.WithLogger(s.logger),
		submission.WithDomain(s.origin(r)),
		submission.WithRedirectDelay(s.redirectDelay),
	}
	if s.metrics != nil {
		machineOpts = append(machineOpts, submission.WithObserver(s.metrics))
	}
	opts := []formview.Option{formview.WithMachineOptions(machineOpts...)}
	if s.optionCheck {
		opts = append(opts, formview.WithValidationOptions(validation.WithOptionMembership()))
	}
	return formview.New(form, s.backend, append(opts, extra...)...)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, view *formview.View) {
	page := view.Page()
	s.renderPage(w, r, status, render.Page{Kind: render.KindForm, Form: &page})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.renderPage(w, r, status, render.Page{
		Kind:  render.KindError,
		Error: &render.ErrorPage{Title: title, Message: message},
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page render.Page) {
	body, err := s.renderer.Render(r.Context(), page, s.renderOptions())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render page failed", "kind", page.Kind, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
