package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

// ListProtocols returns the authenticated practitioner's protocols.
func (a *App) ListProtocols(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	protocols, err := a.Protocols.ProtocolsByPractitioner(r.Context(), practitioner.ID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]any{"items": protocols})
}

// GetProtocol returns one protocol owned by the practitioner.
func (a *App) GetProtocol(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	id := chi.URLParam(r, "protocol_id")
	protocol, err := a.Protocols.ProtocolByID(r.Context(), id)
	if err != nil {
		a.failErr(w, err)
		return
	}
	if protocol.PractitionerID != practitioner.ID {
		a.fail(w, http.StatusNotFound, "protocol not found")
		return
	}
	a.ok(w, http.StatusOK, protocol)
}

type createProtocolRequest struct {
	Title            string                  `json:"title" validate:"required"`
	ShortDescription string                  `json:"short_description"`
	About            []domain.Block          `json:"about"`
	FAQ              []domain.DraftFAQ       `json:"faq"`
	Sources          []domain.DraftSource    `json:"sources"`
	Biomarkers       []domain.DraftBiomarker `json:"biomarkers"`
	HowItWorks       []domain.DraftStep      `json:"how_it_works"`
}

// CreateProtocol persists a manually authored protocol. Shares the
// materialization path with AI-generated ones.
func (a *App) CreateProtocol(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	var req createProtocolRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "title is required")
		return
	}
	draft := &domain.ProtocolDraft{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		About:            req.About,
		FAQ:              req.FAQ,
		Sources:          req.Sources,
		Biomarkers:       req.Biomarkers,
		HowItWorks:       req.HowItWorks,
	}
	protocolID, err := a.Materializer.MaterializeDraft(r.Context(), draft, practitioner.ID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusCreated, protocolCreatedResponse{ProtocolID: protocolID})
}

type updateStatusRequest struct {
	Status domain.ProtocolStatus `json:"status" validate:"required"`
}

// UpdateProtocolStatus moves a protocol through its lifecycle.
func (a *App) UpdateProtocolStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "status is required")
		return
	}
	if !domain.ValidProtocolStatus(req.Status) {
		a.fail(w, http.StatusBadRequest, "unknown protocol status")
		return
	}
	a.setProtocolStatus(w, r, req.Status)
}

// ArchiveProtocol, HideProtocol and DeleteProtocol are lifecycle shortcuts
// the admin UI exposes as one-click actions.
func (a *App) ArchiveProtocol(w http.ResponseWriter, r *http.Request) {
	a.setProtocolStatus(w, r, domain.ProtocolStatusArchived)
}

func (a *App) HideProtocol(w http.ResponseWriter, r *http.Request) {
	a.setProtocolStatus(w, r, domain.ProtocolStatusHidden)
}

func (a *App) DeleteProtocol(w http.ResponseWriter, r *http.Request) {
	a.setProtocolStatus(w, r, domain.ProtocolStatusDeleted)
}

func (a *App) setProtocolStatus(w http.ResponseWriter, r *http.Request, status domain.ProtocolStatus) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	id := chi.URLParam(r, "protocol_id")
	protocol, err := a.Protocols.ProtocolByID(r.Context(), id)
	if err != nil {
		a.failErr(w, err)
		return
	}
	if protocol.PractitionerID != practitioner.ID {
		a.fail(w, http.StatusNotFound, "protocol not found")
		return
	}
	if err := a.Protocols.UpdateProtocolStatus(r.Context(), id, status); err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]any{"protocol_id": id, "status": status})
}
