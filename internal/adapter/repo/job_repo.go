package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO ai_jobs (id, practitioner_id, prompt, status)
VALUES ($1, $2, $3, $4);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.PractitionerID,
		job.Prompt,
		job.Status,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, practitioner_id, prompt, status, result_json, COALESCE(error_message, ''), created_at, updated_at
FROM ai_jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	return scanJob(row)
}

// UpdateStatus moves a pending job to a terminal state, recording the result
// payload or failure reason. Terminal rows are never overwritten: a job that
// already completed or failed (or does not exist) yields domain.ErrNotFound.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, errMsg *string, resultJSON []byte) error {
	query := `
UPDATE ai_jobs
SET status = $2,
    updated_at = NOW(),
    error_message = COALESCE($3, error_message),
    result_json = COALESCE($4, result_json)
WHERE id = $1
  AND status = 'pending';
`
	tag, err := r.pool.Exec(ctx, query, jobID, status, errMsg, nullableBytes(resultJSON))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s has no pending row to finish: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

// staleClaimWindow is how long a claimed job may sit without a terminal
// status before another worker may pick it up again.
const staleClaimWindow = "15 minutes"

// ClaimPending claims the oldest unclaimed pending job in a single statement:
// the row is selected with SKIP LOCKED and stamped claimed_at before the lock
// is released, so two workers can never pull the same job. Claims older than
// staleClaimWindow are treated as abandoned and handed out again.
// Returns domain.ErrNotFound when no job is available.
func (r *JobRepositoryPG) ClaimPending(ctx context.Context) (*domain.Job, error) {
	query := `
WITH next_job AS (
    SELECT id
    FROM ai_jobs
    WHERE status = 'pending'
      AND (claimed_at IS NULL OR claimed_at < NOW() - INTERVAL '` + staleClaimWindow + `')
    ORDER BY created_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE ai_jobs
SET claimed_at = NOW(),
    updated_at = NOW()
FROM next_job
WHERE ai_jobs.id = next_job.id
RETURNING ai_jobs.id, ai_jobs.practitioner_id, ai_jobs.prompt, ai_jobs.status,
          ai_jobs.result_json, COALESCE(ai_jobs.error_message, ''),
          ai_jobs.created_at, ai_jobs.updated_at;
`
	row := r.pool.QueryRow(ctx, query)
	return scanJob(row)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.PractitionerID,
		&job.Prompt,
		&job.Status,
		&job.ResultJSON,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
