// Package worker runs story generations as fire-and-forget background jobs,
// one isolated transaction per job, and reports exactly one terminal outcome
// onto the job record.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"
	"adventure-server/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner schedules and executes generation jobs. Each job acquires its own
// connection from the pool, so its lifetime is independent of the request
// that scheduled it. Concurrency is bounded by a semaphore.
type Runner struct {
	db        interfaces.DBTX
	txManager interfaces.TxManager
	generator *service.StoryGenerator
	jobRepo   interfaces.StoryJobRepository
	logger    *zap.Logger
	sem       chan struct{}
	wg        sync.WaitGroup
}

// NewRunner creates a job runner with the given concurrency limit.
func NewRunner(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	generator *service.StoryGenerator,
	jobRepo interfaces.StoryJobRepository,
	maxConcurrent int,
	logger *zap.Logger,
) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{
		db:        db,
		txManager: txManager,
		generator: generator,
		jobRepo:   jobRepo,
		logger:    logger.Named("JobRunner"),
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// Schedule starts the job in the background and returns immediately. The
// caller must have already persisted the job row in the pending state.
func (r *Runner) Schedule(jobID uuid.UUID, sessionID, theme string) {
	metricsIncrementJobsReceived()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
		r.RunJob(jobID, sessionID, theme)
	}()
}

// Shutdown waits for in-flight jobs to finish or the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunJob executes one generation end to end. The story and all of its nodes
// are written inside a single transaction so a failure leaves no partial
// story visible to readers.
func (r *Runner) RunJob(jobID uuid.UUID, sessionID, theme string) {
	// The job outlives the triggering request, so it runs on its own context.
	ctx := context.Background()
	start := time.Now()
	logger := r.logger.With(zap.String("jobID", jobID.String()))

	defer func() {
		metricsRecordJobDuration(time.Since(start))
	}()

	if err := r.jobRepo.MarkProcessing(ctx, r.db, jobID); err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			logger.Warn("Job disappeared before processing started")
			return
		}
		logger.Error("Failed to mark job processing", zap.Error(err))
		metricsIncrementJobsFailed("job_update")
		return
	}

	var story *models.Story
	err := r.txManager.WithTransaction(ctx, func(ctx context.Context, querier interfaces.DBTX) error {
		var genErr error
		story, genErr = r.generator.Generate(ctx, querier, sessionID, theme)
		return genErr
	})
	if err != nil {
		logger.Error("Generation failed", zap.Error(err), zap.String("theme", theme))
		metricsIncrementJobsFailed(failureReason(err))
		if markErr := r.jobRepo.MarkFailed(ctx, r.db, jobID, err.Error()); markErr != nil {
			logger.Error("Failed to record job failure", zap.Error(markErr))
		}
		return
	}

	if err := r.jobRepo.MarkCompleted(ctx, r.db, jobID, story.ID); err != nil {
		logger.Error("Failed to record job completion", zap.Error(err), zap.String("storyID", story.ID.String()))
		metricsIncrementJobsFailed("job_update")
		return
	}

	metricsIncrementJobsSucceeded()
	logger.Info("Job completed",
		zap.String("storyID", story.ID.String()),
		zap.Duration("duration", time.Since(start)),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidStorySchema):
		return "schema_validation"
	case errors.Is(err, models.ErrGenerationFailed):
		return "ai_error"
	default:
		return "persistence"
	}
}
