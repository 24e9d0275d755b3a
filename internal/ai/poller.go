package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// DefaultPollInterval matches the cadence the admin UI polls job status with.
const DefaultPollInterval = 2 * time.Second

// GenericJobFailure is surfaced when a failed job carries no reason.
const GenericJobFailure = "protocol generation failed"

// Snapshot is one observation of a job's progress. Exactly one of the
// terminal conditions holds for the last snapshot of a watch: Err is set, or
// Status is completed with the raw result payload.
type Snapshot struct {
	Status domain.JobStatus
	Result []byte
	Err    error
}

// Terminal reports whether this snapshot ends the watch.
func (s Snapshot) Terminal() bool {
	return s.Err != nil || s.Status.Terminal()
}

// Poller repeatedly reads one job's row until a terminal state is observed.
// Reads are strictly sequential with a fixed sleep between them; a failed
// read is terminal for the watch, never retried.
type Poller struct {
	jobs        domain.JobRepository
	interval    time.Duration
	maxAttempts int
	logger      infra.Logger
}

// NewPoller builds a poller. interval <= 0 falls back to DefaultPollInterval.
// maxAttempts caps the number of reads before the watch ends with
// domain.ErrPollTimeout; 0 polls until a terminal state or cancellation.
func NewPoller(jobs domain.JobRepository, interval time.Duration, maxAttempts int, logger infra.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{jobs: jobs, interval: interval, maxAttempts: maxAttempts, logger: logger}
}

// Watch starts polling the job and returns a snapshot channel together with a
// stop function. The channel is closed after the terminal snapshot. Calling
// stop guarantees no further store reads are issued and releases the timer;
// it is safe to call more than once.
func (p *Poller) Watch(ctx context.Context, jobID string) (<-chan Snapshot, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot)

	go func() {
		defer close(out)
		timer := time.NewTimer(p.interval)
		defer timer.Stop()

		attempts := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			snap := p.read(ctx, jobID)
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
			if snap.Terminal() {
				return
			}

			attempts++
			if p.maxAttempts > 0 && attempts >= p.maxAttempts {
				timeout := Snapshot{Err: fmt.Errorf("job %s after %d attempts: %w", jobID, attempts, domain.ErrPollTimeout)}
				select {
				case out <- timeout:
				case <-ctx.Done():
				}
				return
			}
			timer.Reset(p.interval)
		}
	}()

	return out, cancel
}

func (p *Poller) read(ctx context.Context, jobID string) Snapshot {
	job, err := p.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Snapshot{Err: fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)}
		}
		return Snapshot{Err: fmt.Errorf("read job %s: %w", jobID, err)}
	}
	switch job.Status {
	case domain.JobStatusCompleted:
		return Snapshot{Status: job.Status, Result: job.ResultJSON}
	case domain.JobStatusFailed:
		reason := job.ErrorMessage
		if reason == "" {
			reason = GenericJobFailure
		}
		return Snapshot{Status: job.Status, Err: fmt.Errorf("%w: %s", domain.ErrJobFailed, reason)}
	default:
		return Snapshot{Status: job.Status}
	}
}
