package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/genai"
)

const idlePollInterval = 2 * time.Second

type jobWorker struct {
	ctx       context.Context
	jobs      domain.JobRepository
	generator *genai.Generator
	logger    infra.Logger
	wake      chan struct{}
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	generator := genai.NewGenerator(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Str("model", generator.Model()).Msg("worker: gemini api key missing, using synthetic draft generation")
	}

	worker := &jobWorker{
		ctx:       ctx,
		jobs:      repo.NewJobRepository(pool),
		generator: generator,
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}

	// Small listener for the dispatcher's best-effort trigger. Losing a
	// trigger is harmless: the idle poll below claims the row anyway.
	go worker.serveTrigger(cfg.WorkerPort)

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *jobWorker) serveTrigger(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/trigger", func(rw http.ResponseWriter, r *http.Request) {
		var body struct {
			JobID string `json:"jobId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		select {
		case w.wake <- struct{}{}:
		default:
		}
		rw.WriteHeader(http.StatusAccepted)
	})
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-w.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error().Err(err).Msg("worker: trigger listener failed")
	}
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		job, err := w.jobs.ClaimPending(w.ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				w.sleep()
				continue
			}
			w.logger.Error().Err(err).Msg("worker: failed to claim job")
			w.sleep()
			continue
		}

		w.handleJob(job)
	}
}

func (w *jobWorker) sleep() {
	select {
	case <-w.ctx.Done():
	case <-w.wake:
	case <-time.After(idlePollInterval):
	}
}

func (w *jobWorker) handleJob(job *domain.Job) {
	w.logger.Info().Str("job_id", job.ID).Msg("worker: picked job")

	draft, err := w.generator.GenerateDraft(w.ctx, job.Prompt)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: generation failed")
		msg := err.Error()
		if updateErr := w.jobs.UpdateStatus(w.ctx, job.ID, domain.JobStatusFailed, &msg, nil); updateErr != nil {
			w.logger.Error().Err(updateErr).Str("job_id", job.ID).Msg("worker: update status failed")
		}
		return
	}

	resultJSON, err := json.Marshal(draft)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: encode draft failed")
		msg := "internal draft encoding error"
		_ = w.jobs.UpdateStatus(w.ctx, job.ID, domain.JobStatusFailed, &msg, nil)
		return
	}

	if err := w.jobs.UpdateStatus(w.ctx, job.ID, domain.JobStatusCompleted, nil, resultJSON); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: update status failed")
		return
	}
	w.logger.Info().Str("job_id", job.ID).Str("title", draft.Title).Msg("worker: job completed")
}
