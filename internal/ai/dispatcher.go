package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
)

// Dispatcher creates AI generation jobs. Submission is two-phase: a durable
// pending row first, then a best-effort notify to the worker endpoint. The
// notify call never fails the submission.
type Dispatcher struct {
	jobs    domain.JobRepository
	trigger WorkerTrigger
	logger  infra.Logger
}

// NewDispatcher builds a dispatcher. A nil trigger disables notification.
func NewDispatcher(jobs domain.JobRepository, trigger WorkerTrigger, logger infra.Logger) *Dispatcher {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &Dispatcher{jobs: jobs, trigger: trigger, logger: logger}
}

// Submit validates the request, persists a pending job and kicks the worker.
// Returns the new job id.
func (d *Dispatcher) Submit(ctx context.Context, prompt, practitionerID string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(practitionerID) == "" {
		return "", fmt.Errorf("practitioner id is required: %w", domain.ErrInvalidInput)
	}

	job := &domain.Job{
		ID:             uuid.NewString(),
		PractitionerID: practitionerID,
		Prompt:         prompt,
		Status:         domain.JobStatusPending,
	}
	if err := d.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	d.logger.Info().Str("job_id", job.ID).Str("practitioner_id", practitionerID).Msg("ai: job created")

	// Detached from the request context so client teardown cannot abort the
	// notify; the row already exists and the worker claim loop is the safety
	// net when the call is lost.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	go func() {
		defer cancel()
		if err := d.trigger.Notify(notifyCtx, job.ID); err != nil {
			d.logger.Warn().Err(err).Str("job_id", job.ID).Msg("ai: worker trigger failed")
		}
	}()

	return job.ID, nil
}
