package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"server/internal/ai"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
)

// App is the handler container wiring stores and the AI pipeline into HTTP.
type App struct {
	Config        *infra.Config
	Logger        infra.Logger
	Validate      *validator.Validate
	Jobs          domain.JobRepository
	Orders        domain.OrderRepository
	Protocols     domain.ProtocolStore
	Templates     domain.TemplateStore
	Practitioners domain.PractitionerStore
	Dispatcher    *ai.Dispatcher
	Poller        *ai.Poller
	Materializer  *ai.Materializer
}

// envelope is the uniform response shape of every entry point. Callers
// branch on Success before touching Data.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *App) ok(w http.ResponseWriter, code int, data any) {
	a.writeJSON(w, code, envelope{Success: true, Data: data})
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.writeJSON(w, code, envelope{Success: false, Error: msg})
}

// failErr maps a domain error to a status code and the envelope.
func (a *App) failErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrJobNotFinished):
		a.fail(w, http.StatusConflict, err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handler: internal error")
		a.fail(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *App) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrInvalidInput
	}
	if a.Validate != nil {
		if err := a.Validate.Struct(dst); err != nil {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// currentPractitioner resolves the practitioner document owning the
// authenticated login identity.
func (a *App) currentPractitioner(ctx context.Context) (*domain.Practitioner, error) {
	loginUserID := middleware.UserIDFromContext(ctx)
	if loginUserID == "" {
		return nil, domain.ErrUnauthorized
	}
	practitioner, err := a.Practitioners.PractitionerByLoginUserID(ctx, loginUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return practitioner, nil
}
