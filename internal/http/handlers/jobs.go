package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/ai"
	"server/internal/domain"
)

type createJobRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type jobCreatedResponse struct {
	JobID string `json:"job_id"`
}

// CreateJob starts a new AI generation job for the authenticated
// practitioner.
func (a *App) CreateJob(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	var req createJobRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "prompt is required")
		return
	}
	jobID, err := a.Dispatcher.Submit(r.Context(), req.Prompt, practitioner.ID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusAccepted, jobCreatedResponse{JobID: jobID})
}

type jobStatusResponse struct {
	Status domain.JobStatus `json:"status"`
	Result json.RawMessage  `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// JobStatus reports one job's progress. One read per request; the client
// polls.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.fail(w, http.StatusBadRequest, "job_id required")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	if job.PractitionerID != practitioner.ID {
		a.fail(w, http.StatusNotFound, "job not found")
		return
	}
	a.ok(w, http.StatusOK, jobStatusResponse{
		Status: job.Status,
		Result: json.RawMessage(job.ResultJSON),
		Error:  job.ErrorMessage,
	})
}

type protocolCreatedResponse struct {
	ProtocolID string `json:"protocol_id"`
}

// MaterializeJob turns a completed job into a persisted protocol.
func (a *App) MaterializeJob(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.fail(w, http.StatusBadRequest, "job_id required")
		return
	}
	protocolID, err := a.Materializer.Materialize(r.Context(), jobID, practitioner.ID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusCreated, protocolCreatedResponse{ProtocolID: protocolID})
}

type generateResponse struct {
	ProtocolID string `json:"protocol_id"`
}

// Generate drives the whole pipeline in one request: submit, poll until
// terminal, materialize. The poll is bounded by the configured attempt cap,
// by the client disconnecting, and by the server's write timeout: the run is
// cut off one second before the connection would go dead, so the response
// always still has a socket to be written to. The job keeps running in the
// worker; on timeout the client is pointed at the async status endpoint.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	var req createJobRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, "prompt is required")
		return
	}
	runCtx := r.Context()
	if budget := a.Config.HTTPWriteTimeout - time.Second; budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, budget)
		defer cancel()
	}
	orchestrator := ai.NewOrchestrator(a.Dispatcher, a.Poller, a.Materializer, a.Logger)
	protocolID, err := orchestrator.Run(runCtx, req.Prompt, practitioner.ID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.fail(w, http.StatusGatewayTimeout, "generation still running; poll GET /v1/ai/jobs/{job_id} instead")
			return
		}
		if errors.Is(err, domain.ErrJobFailed) || errors.Is(err, domain.ErrPollTimeout) {
			a.fail(w, http.StatusBadGateway, err.Error())
			return
		}
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusCreated, generateResponse{ProtocolID: protocolID})
}
