package http

import (
	"errors"
	"net/http"

	"dataentry/internal/core"
	"dataentry/internal/log"
	"dataentry/internal/view"
)

// handleEntryField applies one text or select edit and re-renders the form.
func (s *Server) handleEntryField(w http.ResponseWriter, r *http.Request) {
	if errResp := RequirePOST(r); errResp != nil {
		errResp.Write(w)
		return
	}
	p, errResp := parseBody(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	name, value := fieldEdit(p)
	if name == "" {
		BadRequestError("Missing field name").Write(w)
		return
	}

	v, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	if err := v.UpdateField(name, value); err != nil {
		s.entryError(w, r, err)
		return
	}
	s.renderForm(w, r, v, NewHTMXResponse())
}

// handleEntryDate applies the date picker value.
func (s *Server) handleEntryDate(w http.ResponseWriter, r *http.Request) {
	if errResp := RequirePOST(r); errResp != nil {
		errResp.Write(w)
		return
	}
	p, errResp := parseBody(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	v, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	if err := v.SetDateInput(p.Get("date")); err != nil {
		s.entryError(w, r, err)
		return
	}
	s.renderForm(w, r, v, NewHTMXResponse())
}

// handleEntryTime applies the time picker value.
func (s *Server) handleEntryTime(w http.ResponseWriter, r *http.Request) {
	if errResp := RequirePOST(r); errResp != nil {
		errResp.Write(w)
		return
	}
	p, errResp := parseBody(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	v, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	if err := v.SetTimeInput(p.Get("time")); err != nil {
		s.entryError(w, r, err)
		return
	}
	s.renderForm(w, r, v, NewHTMXResponse())
}

// handleEntrySubmit folds any field values posted with the form into the
// entry, then submits it. A rejected entry re-renders the form with the inline
// error; an accepted one also tells the results panel to reload.
func (s *Server) handleEntrySubmit(w http.ResponseWriter, r *http.Request) {
	if errResp := RequirePOST(r); errResp != nil {
		errResp.Write(w)
		return
	}
	p, errResp := parseBody(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	v, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	if err := applySubmittedFields(v, p); err != nil {
		s.entryError(w, r, err)
		return
	}

	err := v.Submit(r.Context())
	switch {
	case errors.Is(err, core.ErrRequiredFields):
		s.renderForm(w, r, v, NewHTMXResponse())
		return
	case errors.Is(err, view.ErrClosed):
		s.entryError(w, r, err)
		return
	}
	// Fetch failures are logged by the view and never shown.

	s.renderForm(w, r, v, NewHTMXResponse().
		TriggerResultsRefresh().
		TriggerSuccessNotification("Entry submitted"))
}

// applySubmittedFields writes the date, time and text fields present in the
// submitted form. Disabled inputs are absent from the body and left alone.
func applySubmittedFields(v *view.View, p *RequestBodyParser) error {
	if p.Has("date") {
		if err := v.SetDateInput(p.Get("date")); err != nil {
			return err
		}
	}
	if p.Has("time") {
		if err := v.SetTimeInput(p.Get("time")); err != nil {
			return err
		}
	}
	for _, u := range entryUpdates(p) {
		if err := v.UpdateField(u.Name, u.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, v *view.View, resp *HTMXResponseBuilder) {
	s.render(w, r, "form", s.newFormView(r.Context(), v.Snapshot()), resp)
}

// entryError maps view and parse errors onto htmx error fragments.
func (s *Server) entryError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())

	switch {
	case errors.Is(err, core.ErrUnknownField):
		logger.WarnContext(r.Context(), "Unknown entry field", log.FieldError, err.Error(), "error_type", log.ErrorTypeValidation)
		UnprocessableEntityError("Unknown field").Write(w)
	case errors.Is(err, core.ErrInvalidDate):
		UnprocessableEntityError("Invalid date").Write(w)
	case errors.Is(err, core.ErrInvalidTime):
		UnprocessableEntityError("Invalid time").Write(w)
	case errors.Is(err, view.ErrClosed):
		ErrorResponse(http.StatusGone, "Session expired, please reload the page").Write(w)
	default:
		logger.ErrorContext(r.Context(), "Entry update failed", log.FieldError, err.Error(), "error_type", log.ErrorTypeInternal)
		InternalServerError("Something went wrong").Write(w)
	}
}
