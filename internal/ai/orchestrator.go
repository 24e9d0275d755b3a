package ai

import (
	"context"
	"fmt"
	"sync"

	"server/internal/domain"
	"server/internal/infra"
)

// State is the orchestration façade's position in one submission.
type State string

const (
	StateIdle          State = "idle"
	StateSubmitting    State = "submitting"
	StatePolling       State = "polling"
	StateMaterializing State = "materializing"
	StateDone          State = "done"
)

// Orchestrator drives one prompt through the whole pipeline: submit, poll,
// materialize. At most one job is in flight per instance; a submission while
// not idle is rejected. Error exits return to idle carrying the message.
type Orchestrator struct {
	dispatcher   *Dispatcher
	poller       *Poller
	materializer *Materializer
	logger       infra.Logger

	mu         sync.Mutex
	state      State
	jobID      string
	protocolID string
	lastErr    string
}

// NewOrchestrator builds an idle orchestrator.
func NewOrchestrator(dispatcher *Dispatcher, poller *Poller, materializer *Materializer, logger infra.Logger) *Orchestrator {
	return &Orchestrator{
		dispatcher:   dispatcher,
		poller:       poller,
		materializer: materializer,
		logger:       logger,
		state:        StateIdle,
	}
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError returns the error message of the most recent failed run, cleared
// on the next submission.
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// ProtocolID returns the materialized protocol id once the run is done.
func (o *Orchestrator) ProtocolID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.protocolID
}

// Reset returns a finished orchestrator to idle so it can accept a new
// submission. Resetting mid-flight is rejected.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle && o.state != StateDone {
		return fmt.Errorf("cannot reset while %s: %w", o.state, domain.ErrInvalidInput)
	}
	o.state = StateIdle
	o.jobID = ""
	o.protocolID = ""
	o.lastErr = ""
	return nil
}

// Run executes the full pipeline and returns the new protocol id. Cancelling
// ctx stops the poll; no materialization happens after cancellation.
func (o *Orchestrator) Run(ctx context.Context, prompt, practitionerID string) (string, error) {
	if err := o.begin(); err != nil {
		return "", err
	}

	jobID, err := o.dispatcher.Submit(ctx, prompt, practitionerID)
	if err != nil {
		return "", o.fail(err)
	}
	o.transition(StatePolling, jobID)

	snapshots, stop := o.poller.Watch(ctx, jobID)
	defer stop()

	var result Snapshot
	for snap := range snapshots {
		if snap.Terminal() {
			result = snap
			break
		}
	}
	if ctx.Err() != nil {
		return "", o.fail(ctx.Err())
	}
	if result.Err != nil {
		return "", o.fail(result.Err)
	}

	o.transition(StateMaterializing, jobID)
	protocolID, err := o.materializer.Materialize(ctx, jobID, practitionerID)
	if err != nil {
		return "", o.fail(err)
	}

	o.mu.Lock()
	o.state = StateDone
	o.protocolID = protocolID
	o.mu.Unlock()
	o.logger.Info().Str("job_id", jobID).Str("protocol_id", protocolID).Msg("ai: generation pipeline finished")
	return protocolID, nil
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return fmt.Errorf("generation already in flight (%s): %w", o.state, domain.ErrInvalidInput)
	}
	o.state = StateSubmitting
	o.lastErr = ""
	o.protocolID = ""
	return nil
}

func (o *Orchestrator) transition(next State, jobID string) {
	o.mu.Lock()
	o.state = next
	o.jobID = jobID
	o.mu.Unlock()
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = StateIdle
	o.jobID = ""
	o.lastErr = err.Error()
	o.mu.Unlock()
	return err
}
