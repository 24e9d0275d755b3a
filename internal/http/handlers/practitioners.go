package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
)

// Me returns the practitioner owning the authenticated identity.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, practitioner)
}

type createPractitionerRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreatePractitioner seeds the practitioner document on first login.
func (a *App) CreatePractitioner(w http.ResponseWriter, r *http.Request) {
	loginUserID := middleware.UserIDFromContext(r.Context())
	if loginUserID == "" {
		a.failErr(w, domain.ErrUnauthorized)
		return
	}
	var req createPractitionerRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "name is required")
		return
	}
	if existing, err := a.Practitioners.PractitionerByLoginUserID(r.Context(), loginUserID); err == nil {
		a.ok(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		a.failErr(w, err)
		return
	}
	created, err := a.Practitioners.CreatePractitioner(r.Context(), &domain.Practitioner{
		LoginUserID: loginUserID,
		Name:        req.Name,
	})
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusCreated, created)
}

// UpdatePractitioner patches editable profile fields.
func (a *App) UpdatePractitioner(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	id := chi.URLParam(r, "practitioner_id")
	if id != practitioner.ID {
		a.fail(w, http.StatusNotFound, "practitioner not found")
		return
	}
	var fields domain.PractitionerUpdate
	if err := a.decode(r, &fields); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.Practitioners.UpdatePractitioner(r.Context(), id, fields); err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]string{"practitioner_id": id})
}

type updatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=8"`
}

// UpdatePractitionerPhone replaces the phone number; verification resets.
func (a *App) UpdatePractitionerPhone(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	id := chi.URLParam(r, "practitioner_id")
	if id != practitioner.ID {
		a.fail(w, http.StatusNotFound, "practitioner not found")
		return
	}
	var req updatePhoneRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	if err := a.Practitioners.UpdatePractitionerPhone(r.Context(), id, req.PhoneNumber); err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]string{"practitioner_id": id})
}
